package session

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// cwdScanLimit bounds how many transcript lines SniffCwd inspects. The
// working directory marker shows up in the environment preamble, which is
// always near the top of the file.
const cwdScanLimit = 200

// SniffCwd scans the head of a transcript for a <cwd>…</cwd> marker embedded
// in any string field and returns its contents, or "" if none was found.
func SniffCwd(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, scanBufInitial), scanBufMax)

	seen := 0
	for scanner.Scan() && seen < cwdScanLimit {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		seen++

		var value any
		if err := json.Unmarshal(line, &value); err != nil {
			continue
		}
		if cwd := cwdFromValue(value); cwd != "" {
			return cwd
		}
	}
	return ""
}

// cwdFromValue walks a decoded JSON value looking for <cwd> markers.
// encoding/json decodes into exactly five shapes: string, map, slice,
// float64/bool, and nil; only the first three can hold the marker.
func cwdFromValue(value any) string {
	switch v := value.(type) {
	case string:
		return cwdFromText(v)
	case map[string]any:
		// "text" fields carry the preamble; check them first.
		if text, ok := v["text"].(string); ok {
			if cwd := cwdFromText(text); cwd != "" {
				return cwd
			}
		}
		for key, child := range v {
			if key == "text" {
				continue
			}
			if cwd := cwdFromValue(child); cwd != "" {
				return cwd
			}
		}
	case []any:
		for _, child := range v {
			if cwd := cwdFromValue(child); cwd != "" {
				return cwd
			}
		}
	}
	return ""
}

func cwdFromText(text string) string {
	const startTag, endTag = "<cwd>", "</cwd>"
	start := strings.Index(text, startTag)
	if start < 0 {
		return ""
	}
	start += len(startTag)
	end := strings.Index(text[start:], endTag)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(text[start : start+end])
}
