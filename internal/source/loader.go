// Package source resolves text given either inline or as a file path.
package source

import (
	"context"
	"fmt"
	"strings"
)

// Reader turns a document on disk into text.
type Reader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Source describes where a piece of text comes from.
type Source struct {
	// Name is used in error messages to give more context about the text.
	Name string
	// Value is inline text provided via configuration or flags.
	Value string
	// File points to a document containing the text. When set it takes
	// precedence over Value.
	File string
}

// Load returns the resolved text from src, reading File through r when it is
// set. The returned text is always trimmed. An error is returned when neither
// File nor Value contain usable text.
func Load(ctx context.Context, r Reader, src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "text"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		text, err := r.ReadText(ctx, file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = text
		src.File = file
	}

	text := strings.TrimSpace(src.Value)
	if text == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return text, nil
}
