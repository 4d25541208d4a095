// Package prompts holds the LLM prompt templates, embedded as JSON files of
// key → template.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// catalog maps file name → key → template.
type catalog map[string]map[string]string

// loadCatalog parses every embedded file once.
var loadCatalog = sync.OnceValues(func() (catalog, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}

	c := make(catalog, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		c[name] = templates
	}
	return c, nil
})

// Get returns the template stored under key in filename (e.g. "rewriting.json").
func Get(filename, key string) (string, error) {
	c, err := loadCatalog()
	if err != nil {
		return "", err
	}

	templates, ok := c[filename]
	if !ok {
		return "", fmt.Errorf("prompt file %s not found", filename)
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is like Get but panics. The templates ship with the binary, so a
// miss is a programming error.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format fills {{.Key}} placeholders from data in a single pass; placeholder
// text inside a value is left alone. Unknown placeholders stay as written.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
