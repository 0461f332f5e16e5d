package intake

import (
	"fmt"
	"strings"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"n/a":  true,
	"#n/a": true,
}

// CleanValue trims v and returns nil for empty or NaN-like cells
func CleanValue(v string) *string {
	trimmed := strings.TrimSpace(v)
	if nullTokens[strings.ToLower(trimmed)] {
		return nil
	}
	return &trimmed
}

// HasKeyColumn reports whether any column maps to the natural key
func HasKeyColumn(columns []string) bool {
	for _, field := range ResolveColumns(columns) {
		if field == models.FieldCUID {
			return true
		}
	}
	return false
}

// MapRows converts every table row to canonical fields, keeping rows without a key.
// Every mapped field is present in the record, nil when the cell is empty.
func MapRows(table *Table) []models.NormalizedRecord {
	mapping := ResolveColumns(table.Columns)

	records := make([]models.NormalizedRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(models.NormalizedRecord, len(mapping))
		for column, field := range mapping {
			record[field] = CleanValue(row[column])
		}
		records = append(records, record)
	}
	return records
}

// Normalize maps, cleans and deduplicates a table for reconciliation.
// Returns ErrMissingKeyColumn when no column maps to cuid.
func Normalize(table *Table) ([]models.NormalizedRecord, error) {
	if !HasKeyColumn(table.Columns) {
		return nil, fmt.Errorf("%w: none of %v maps to %s", interfaces.ErrMissingKeyColumn, table.Columns, models.FieldCUID)
	}
	records, _ := Deduplicate(MapRows(table))
	return records, nil
}

// Deduplicate drops records without a key and collapses duplicate keys.
// The last occurrence of a key wins; output follows each key's first appearance.
// Returns the surviving records and the number of keyless records dropped.
func Deduplicate(records []models.NormalizedRecord) ([]models.NormalizedRecord, int) {
	skipped := 0
	position := make(map[string]int, len(records))
	out := make([]models.NormalizedRecord, 0, len(records))

	for _, r := range records {
		key := strings.TrimSpace(r.Key())
		if key == "" {
			skipped++
			continue
		}
		if key != r.Key() {
			r = r.Clone()
			r.Set(models.FieldCUID, key)
		}
		if i, seen := position[key]; seen {
			out[i] = r
			continue
		}
		position[key] = len(out)
		out = append(out, r)
	}
	return out, skipped
}

// MapAllColumns is MapRows that also keeps unmapped columns under their source header.
// Columns with an empty header are dropped.
func MapAllColumns(table *Table) []models.NormalizedRecord {
	mapping := ResolveColumns(table.Columns)

	records := make([]models.NormalizedRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(models.NormalizedRecord, len(table.Columns))
		for _, column := range table.Columns {
			name, mapped := mapping[column]
			if !mapped {
				if column == "" || isCanonical(column) {
					continue
				}
				name = column
			}
			if _, done := record[name]; done {
				continue
			}
			record[name] = CleanValue(row[column])
		}
		records = append(records, record)
	}
	return records
}

func isCanonical(name string) bool {
	for _, f := range models.CanonicalFields {
		if f == name {
			return true
		}
	}
	return false
}
