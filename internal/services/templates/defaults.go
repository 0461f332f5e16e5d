package templates

import (
	"fmt"

	"github.com/codelie14/zillasec/internal/models"
	builtin "github.com/codelie14/zillasec/internal/templates"
)

// BuiltinInstruction returns the embedded instruction for variant, or "" when there is none
func BuiltinInstruction(variant models.SchemaVariant) string {
	text, err := builtin.Instruction(variant)
	if err != nil {
		return ""
	}
	return text
}

// builtinTemplates loads every embedded template, applying overrides from dir
func builtinTemplates(dir string) ([]*models.InstructionTemplate, error) {
	names, err := builtin.ListEmbeddedTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to list built-in templates: %w", err)
	}

	out := make([]*models.InstructionTemplate, 0, len(names))
	for _, name := range names {
		t, err := builtin.GetTemplate(name, dir)
		if err != nil {
			return nil, fmt.Errorf("built-in template %s: %w", name, err)
		}
		out = append(out, &models.InstructionTemplate{
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Type:        t.Type,
			Content:     t.Content,
			IsDefault:   t.IsDefault,
		})
	}
	return out, nil
}
