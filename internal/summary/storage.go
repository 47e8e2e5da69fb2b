package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// WriteSummary persists a summary body with YAML front matter and returns the
// resulting record. Parent directories are created as needed. The front
// matter block is only emitted when metadata is non-empty; the body is always
// newline-terminated.
func WriteSummary(path, body string, metadata map[string]any) (*Record, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating summary dir: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	var sections []string
	if len(metadata) > 0 {
		fm, err := yaml.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("encoding front matter: %w", err)
		}
		sections = append(sections,
			frontMatterDelimiter+"\n"+strings.TrimSpace(string(fm))+"\n"+frontMatterDelimiter,
			"", // blank line between metadata and body
		)
	}
	sections = append(sections, body)

	if err := os.WriteFile(path, []byte(strings.Join(sections, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	return &Record{Body: body, CachePath: path, Metadata: metadata, Cached: true}, nil
}

// ReadSummary loads a stored summary, splitting front matter from body.
func ReadSummary(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	metadata, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Record{Body: body, CachePath: path, Metadata: metadata, Cached: true}, nil
}

// splitFrontMatter separates an optional leading front matter block from the
// body. A file with no opening delimiter is all body. A file with an opening
// delimiter but no closing one is also treated as all body rather than
// failing, so a truncated write never loses the text. Front matter that
// parses to a non-mapping is a format error.
func splitFrontMatter(content string) (map[string]any, string, error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return map[string]any{}, content, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != frontMatterDelimiter {
			continue
		}

		metadata := map[string]any{}
		fmText := strings.TrimSpace(strings.Join(lines[1:i], "\n"))
		if fmText != "" {
			var decoded any
			if err := yaml.Unmarshal([]byte(fmText), &decoded); err != nil {
				return nil, "", fmt.Errorf("parsing front matter: %w", err)
			}
			switch v := decoded.(type) {
			case nil:
			case map[string]any:
				metadata = v
			default:
				return nil, "", fmt.Errorf("front matter must deserialize to a mapping, got %T", decoded)
			}
		}

		body := strings.Join(lines[i+1:], "\n")
		// Skip the blank separator line emitted by WriteSummary.
		body = strings.TrimPrefix(body, "\n")
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		return metadata, body, nil
	}

	// No closing delimiter; keep everything as body to avoid data loss.
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return map[string]any{}, content, nil
}
