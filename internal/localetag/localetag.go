// Package localetag normalizes the locale tags that name locale stores
// ("en-US.json", "vi_VN.yaml") so they can be compared and used as lookup keys.
package localetag

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// Normalize returns the canonical BCP 47 form of tag ("en_us" -> "en-US").
// Tags x/text cannot parse are returned trimmed and lowercased.
func Normalize(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	return parsed.String()
}

// Base returns the base language of tag ("pt-BR" -> "pt").
func Base(tag string) string {
	tag = Normalize(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		if idx := strings.Index(tag, "-"); idx > 0 {
			return tag[:idx]
		}
		return tag
	}
	base, _ := parsed.Base()
	return base.String()
}

// Valid reports whether tag is a well-formed BCP 47 tag.
func Valid(tag string) bool {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

// FromPath derives the locale tag from a store file name
// ("res/langs/vi-VN.json" -> "vi-VN").
func FromPath(path string) string {
	name := filepath.Base(path)
	return Normalize(strings.TrimSuffix(name, filepath.Ext(name)))
}
