package models

import "time"

// TemplateCategory groups instruction templates
type TemplateCategory string

const (
	TemplateCategoryAnalysis TemplateCategory = "analysis"
	TemplateCategoryReport   TemplateCategory = "report"
	TemplateCategoryAlert    TemplateCategory = "alert"
	TemplateCategoryCustom   TemplateCategory = "custom"
)

// Valid reports whether c is a known category
func (c TemplateCategory) Valid() bool {
	switch c {
	case TemplateCategoryAnalysis, TemplateCategoryReport, TemplateCategoryAlert, TemplateCategoryCustom:
		return true
	}
	return false
}

// InstructionTemplate is a reusable system instruction for the completion service.
// Type names the schema variant the instruction asks for.
type InstructionTemplate struct {
	ID          string           `json:"id" badgerhold:"key"` // tpl_{uuid}
	Name        string           `json:"name" badgerhold:"index"`
	Description string           `json:"description"`
	Category    TemplateCategory `json:"category" badgerhold:"index"`
	Type        SchemaVariant    `json:"type"`
	Content     string           `json:"content"`
	IsDefault   bool             `json:"is_default"`
	UsageCount  int              `json:"usage_count"`
	LastUsed    *time.Time       `json:"last_used,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
