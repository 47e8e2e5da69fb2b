// Package session discovers JSONL session transcripts and extracts their
// message lines.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scanner buffer sizing: transcript lines can carry whole tool outputs.
const (
	scanBufInitial = 256 * 1024
	scanBufMax     = 8 * 1024 * 1024
)

// ExtractMessage applies the message rule to a decoded transcript line.
// A line is a message if its top-level "type" is "message", or if it carries
// a payload whose "type" is "message" — in which case the payload is promoted,
// inheriting the outer timestamp and id (as "response_id") when absent.
// Returns nil for anything else.
func ExtractMessage(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	if obj["type"] == "message" {
		return obj
	}

	payload, ok := obj["payload"].(map[string]any)
	if !ok || payload["type"] != "message" {
		return nil
	}

	msg := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		msg[k] = v
	}
	if ts, ok := obj["timestamp"]; ok && ts != nil {
		if _, present := msg["timestamp"]; !present {
			msg["timestamp"] = ts
		}
	}
	if id, ok := obj["id"]; ok && id != nil && id != "" {
		if _, present := msg["response_id"]; !present {
			msg["response_id"] = id
		}
	}
	return msg
}

// EachMessage streams the transcript at path, invoking fn for every message
// line. Blank and malformed lines are skipped rather than failing the run.
// The file is never buffered whole; arbitrarily large transcripts are fine.
func EachMessage(path string, fn func(map[string]any) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, scanBufInitial), scanBufMax)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			continue
		}

		msg := ExtractMessage(obj)
		if msg == nil {
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// CountMessages returns the number of message lines in the transcript.
func CountMessages(path string) (int, error) {
	count := 0
	err := EachMessage(path, func(map[string]any) error {
		count++
		return nil
	})
	return count, err
}

// WriteMessagesLog extracts all message lines from source into a fresh JSONL
// file at target, creating parent directories as needed. The target is
// overwritten unconditionally; refresh policy belongs to the caller.
// Returns the number of messages written.
func WriteMessagesLog(source, target string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}

	w := bufio.NewWriter(f)
	count := 0
	err = EachMessage(source, func(msg map[string]any) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		_ = f.Close()
		return count, err
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return count, err
	}
	return count, f.Close()
}
