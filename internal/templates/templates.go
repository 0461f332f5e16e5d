// Package templates provides the built-in analysis instructions as embedded TOML files.
// Templates are loaded with resolution order:
// 1. User override: templatesDir/{name}.toml
// 2. Embedded default: internal/templates/{name}.toml
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/codelie14/zillasec/internal/models"
)

//go:embed *.toml
var fs embed.FS

// Template is one built-in instruction. The file name is the schema variant it asks for.
type Template struct {
	Name        string                  `toml:"name"`
	Description string                  `toml:"description"`
	Category    models.TemplateCategory `toml:"category"`
	Type        models.SchemaVariant    `toml:"type"`
	Content     string                  `toml:"content"`
	IsDefault   bool                    `toml:"is_default"`
}

// GetTemplate loads a template by name, preferring templatesDir over the embedded copy
func GetTemplate(name string, templatesDir string) (*Template, error) {
	if templatesDir != "" {
		userPath := filepath.Join(templatesDir, name+".toml")
		if data, err := os.ReadFile(userPath); err == nil {
			return parseTemplate(data)
		}
	}

	data, err := fs.ReadFile(name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("template '%s' not found (checked user override and embedded)", name)
	}
	return parseTemplate(data)
}

// ListEmbeddedTemplates returns names of all embedded templates, sorted
func ListEmbeddedTemplates() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".toml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Instruction returns the embedded instruction text for variant
func Instruction(variant models.SchemaVariant) (string, error) {
	t, err := GetTemplate(string(variant), "")
	if err != nil {
		return "", err
	}
	return t.Content, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	t.Name = strings.TrimSpace(t.Name)
	t.Content = strings.TrimSpace(t.Content)
	if t.Name == "" || t.Content == "" {
		return nil, fmt.Errorf("template needs a name and content")
	}
	if !t.Type.Valid() {
		return nil, fmt.Errorf("unknown schema variant %q", t.Type)
	}
	if t.Category == "" {
		t.Category = models.TemplateCategoryAnalysis
	}
	return &t, nil
}
