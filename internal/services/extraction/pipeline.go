// Package extraction turns free-form completion replies into validated analysis documents.
package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codelie14/zillasec/internal/models"
)

const fence = "```"

// Pipeline locates, parses and validates the JSON object in a completion reply
type Pipeline struct {
	variant  models.SchemaVariant
	validate *validator.Validate
}

// NewPipeline creates a pipeline validating against variant
func NewPipeline(variant models.SchemaVariant) (*Pipeline, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unknown schema variant %q", variant)
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Pipeline{
		variant:  variant,
		validate: validate,
	}, nil
}

// Variant returns the configured schema variant
func (p *Pipeline) Variant() models.SchemaVariant {
	return p.variant
}

// Extract validates raw against the configured variant
func (p *Pipeline) Extract(raw string) (*models.StructuredResult, error) {
	return p.ExtractAs(raw, p.variant)
}

// ExtractAs validates raw against variant. Every failure is an *ExtractionError.
func (p *Pipeline) ExtractAs(raw string, variant models.SchemaVariant) (*models.StructuredResult, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("unknown schema variant %q", variant)
	}

	candidate, err := Locate(raw)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, newError(KindMalformedJSON, raw, err, "extracted span does not parse")
	}

	if err := p.check(candidate, variant); err != nil {
		return nil, newError(KindSchemaMismatch, raw, err, "%s", variant)
	}

	return &models.StructuredResult{
		Variant:  variant,
		Document: json.RawMessage(candidate),
	}, nil
}

// Locate trims raw, strips a surrounding code fence and returns the span from the
// first '{' to the last '}'. Braces inside string values are not treated specially.
func Locate(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, fence) {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimRight(text, " \t\r\n"), fence)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return "", newError(KindNoJSONObject, raw, nil, "no {...} span in %d characters", len(raw))
	}
	return text[start : end+1], nil
}

func (p *Pipeline) check(candidate string, variant models.SchemaVariant) error {
	var target any
	switch variant {
	case models.SchemaRiskSummary:
		target = &RiskSummary{}
	case models.SchemaAccessReview:
		target = &AccessReview{}
	default:
		return nil
	}

	if err := json.NewDecoder(bytes.NewReader([]byte(candidate))).Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return err
	}

	if err := p.validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("field %s failed %q", fieldErrs[0].Namespace(), fieldErrs[0].Tag())
		}
		return err
	}
	return nil
}
