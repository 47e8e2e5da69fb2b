package summary

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed prompts/*.md
var builtinPrompts embed.FS

// ValidationError reports a prompt template that failed its sanity checks.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("prompt %s: %s", e.Path, e.Reason)
}

// Document is a loaded prompt template plus where it came from. Builtin
// templates report an "embedded:" pseudo-path.
type Document struct {
	Content string
	Path    string
}

// PromptLoader resolves prompt variant names to template files, searching the
// configured directories before the embedded defaults.
type PromptLoader struct {
	dirs []string
}

// NewPromptLoader creates a loader over the given search directories, in
// priority order. Duplicates are dropped.
func NewPromptLoader(dirs ...string) *PromptLoader {
	seen := make(map[string]bool, len(dirs))
	l := &PromptLoader{}
	for _, dir := range dirs {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		l.dirs = append(l.dirs, dir)
	}
	return l
}

// Load resolves and validates the named prompt. The name may be a direct file
// path, a variant name resolved against the search directories (trying
// name.md then name.txt), or a builtin template name.
func (l *PromptLoader) Load(name string) (*Document, error) {
	if content, path, ok := l.resolveFile(name); ok {
		doc := &Document{Content: content, Path: path}
		return doc, validatePrompt(doc)
	}

	candidate := name
	if !strings.Contains(name, ".") {
		candidate = name + ".md"
	}
	if data, err := builtinPrompts.ReadFile("prompts/" + candidate); err == nil {
		doc := &Document{Content: string(data), Path: "embedded:prompts/" + candidate}
		return doc, validatePrompt(doc)
	}

	return nil, fmt.Errorf("prompt %q not found (searched: %s, builtins)", name, strings.Join(l.dirs, ", "))
}

func (l *PromptLoader) resolveFile(name string) (content, path string, ok bool) {
	if data, err := os.ReadFile(name); err == nil {
		return string(data), name, true
	}

	base := name
	if !strings.Contains(name, ".") {
		base = name + ".md"
	}
	for _, dir := range l.dirs {
		for _, candidate := range promptCandidates(dir, name, base) {
			if data, err := os.ReadFile(candidate); err == nil {
				return string(data), candidate, true
			}
		}
	}
	return "", "", false
}

func promptCandidates(dir, name, base string) []string {
	candidates := []string{filepath.Join(dir, base)}
	if !strings.HasSuffix(base, ".txt") {
		candidates = append(candidates, filepath.Join(dir, name+".txt"))
	}
	return candidates
}

// validatePrompt enforces the template contract: braces balanced and at least
// one {{ }} placeholder present. Violations are fatal at load time.
func validatePrompt(doc *Document) error {
	open := strings.Count(doc.Content, "{{")
	closed := strings.Count(doc.Content, "}}")
	if open != closed {
		return &ValidationError{
			Path:   doc.Path,
			Reason: fmt.Sprintf("mismatched template braces: %d {{ vs %d }}", open, closed),
		}
	}
	if open == 0 {
		return &ValidationError{
			Path:   doc.Path,
			Reason: "no template placeholders; expected at least one {{...}}",
		}
	}
	return nil
}
