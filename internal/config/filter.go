package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcdickinson/lovvelger/internal/law"
)

// LoadFilter reads a filter profile from a YAML file:
//
//	law_base: LOV-2005-06-17-62
//	allowed_chapters: [kapittel-1, kapittel-2]
//	allowed_paragraphs: [paragraf-1]
func LoadFilter(path string) (law.LawFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return law.LawFilter{}, fmt.Errorf("reading filter %s: %w", path, err)
	}
	return ParseFilter(data)
}

// ParseFilter decodes a YAML filter profile. Unknown keys are rejected so
// that a misspelled allow-list does not silently allow everything.
func ParseFilter(data []byte) (law.LawFilter, error) {
	var f law.LawFilter
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return law.LawFilter{}, nil
		}
		return law.LawFilter{}, fmt.Errorf("parsing filter: %w", err)
	}
	return f, nil
}

// MergeFilter overlays the non-empty fields of override onto base.
func MergeFilter(base, override law.LawFilter) law.LawFilter {
	if override.LawBase != "" {
		base.LawBase = override.LawBase
	}
	if len(override.AllowedChapters) > 0 {
		base.AllowedChapters = override.AllowedChapters
	}
	if len(override.AllowedParagraphs) > 0 {
		base.AllowedParagraphs = override.AllowedParagraphs
	}
	if override.PreselectedReference != "" {
		base.PreselectedReference = override.PreselectedReference
	}
	return base
}
