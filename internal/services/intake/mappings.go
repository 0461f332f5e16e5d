package intake

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/codelie14/zillasec/internal/models"
)

// HeaderMappings maps normalized source headers to canonical fields
var HeaderMappings = map[string]string{
	"cuid": models.FieldCUID,

	"idhuawei":          models.FieldIDHuawei,
	"huaweiid":          models.FieldIDHuawei,
	"identifianthuawei": models.FieldIDHuawei,

	"nom":          models.FieldNom,
	"nomdefamille": models.FieldNom,
	"lastname":     models.FieldNom,
	"surname":      models.FieldNom,

	"prenom":    models.FieldPrenom,
	"firstname": models.FieldPrenom,
	"givenname": models.FieldPrenom,

	"mailhuawei":  models.FieldMailHuawei,
	"emailhuawei": models.FieldMailHuawei,

	"mailorange":  models.FieldMailOrange,
	"emailorange": models.FieldMailOrange,

	"numerodetelephone": models.FieldTelephone,
	"numerotelephone":   models.FieldTelephone,
	"telephone":         models.FieldTelephone,
	"tel":               models.FieldTelephone,
	"phone":             models.FieldTelephone,
	"phonenumber":       models.FieldTelephone,

	"perimeter": models.FieldPerimeter,
	"perimetre": models.FieldPerimeter,

	"affiliate": models.FieldAffiliate,
	"filiale":   models.FieldAffiliate,

	"statut": models.FieldStatut,
	"status": models.FieldStatut,

	"cluster": models.FieldCluster,

	"domaine": models.FieldDomaine,
	"domain":  models.FieldDomaine,

	"plateforme": models.FieldPlateforme,
	"platform":   models.FieldPlateforme,
}

// ResolveColumns maps source columns to canonical fields.
// Unknown columns are left out. When two columns map to the same field the first one wins.
func ResolveColumns(columns []string) map[string]string {
	result := make(map[string]string, len(columns))
	used := make(map[string]bool)

	for _, column := range columns {
		target, ok := HeaderMappings[normalizeHeader(column)]
		if !ok || used[target] {
			continue
		}
		result[column] = target
		used[target] = true
	}
	return result
}

// normalizeHeader folds case, strips diacritics and drops separators
func normalizeHeader(header string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(header)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(header))
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch r {
		case ' ', '_', '-', '.', '\'', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
