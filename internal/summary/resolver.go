package summary

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

const (
	summaryFilename  = "summary.md"
	messagesFilename = "summary.messages.jsonl"
)

// PathResolver maps session transcripts to deterministic cache locations
// under the summary root. Sessions inside the sessions root mirror its
// directory structure; anything else lands under external/ with a stable
// digest so unrelated paths cannot collide.
type PathResolver struct {
	SummaryRoot  string
	SessionsRoot string
}

// NewPathResolver normalizes both roots to absolute paths. SessionsRoot may
// be empty, in which case every session is treated as external.
func NewPathResolver(summaryRoot, sessionsRoot string) *PathResolver {
	r := &PathResolver{SummaryRoot: absClean(summaryRoot)}
	if sessionsRoot != "" {
		r.SessionsRoot = absClean(sessionsRoot)
	}
	return r
}

// CachePath returns where the summary markdown for this session + prompt
// variant lives. The model id deliberately does not participate: two models
// share one slot per variant, with the model recorded in metadata instead.
func (r *PathResolver) CachePath(sessionPath, promptVariant string) string {
	return filepath.Join(r.SummaryDir(sessionPath), Slug(promptVariant), summaryFilename)
}

// SummaryDir returns the directory holding all cached variants for a session.
func (r *PathResolver) SummaryDir(sessionPath string) string {
	return filepath.Join(r.SummaryRoot, r.relativeSourceDir(sessionPath))
}

// MessagesPath returns where the extracted-message log for a session lives.
func (r *PathResolver) MessagesPath(sessionPath string) string {
	return filepath.Join(r.SummaryDir(sessionPath), messagesFilename)
}

// Variant pairs a prompt slug with its cached summary path.
type Variant struct {
	Slug string
	Path string
}

// CachedVariants lists the prompt variants that already have a summary on
// disk for this session, ordered by directory name.
func (r *PathResolver) CachedVariants(sessionPath string) ([]Variant, error) {
	dir := r.SummaryDir(sessionPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var variants []Variant
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name(), summaryFilename)
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			variants = append(variants, Variant{Slug: entry.Name(), Path: candidate})
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Slug < variants[j].Slug })
	return variants, nil
}

func (r *PathResolver) relativeSourceDir(sessionPath string) string {
	abs := absClean(sessionPath)

	if r.SessionsRoot != "" {
		if rel, err := filepath.Rel(r.SessionsRoot, abs); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel
		}
	}

	sum := sha1.Sum([]byte(abs))
	digest := hex.EncodeToString(sum[:])[:12]
	return filepath.Join("external", digest+"-"+Slug(stem(abs)))
}

// Slug converts free text to a filesystem-safe identifier: lowercase, runs of
// non-alphanumerics collapse to a single dash, leading/trailing dashes
// stripped. Empty results map to "default".
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('-')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	slug := strings.Join(parts, "-")
	if slug == "" {
		return "default"
	}
	return slug
}

// stem returns the filename without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func absClean(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
