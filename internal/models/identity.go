package models

import (
	"sort"
	"time"
)

// Canonical field names shared by the intake normalizer, the identity store and the analysis rows
const (
	FieldCUID       = "cuid"
	FieldIDHuawei   = "id_huawei"
	FieldNom        = "nom"
	FieldPrenom     = "prenom"
	FieldMailHuawei = "mail_huawei"
	FieldMailOrange = "mail_orange"
	FieldTelephone  = "telephone"
	FieldPerimeter  = "perimeter"
	FieldAffiliate  = "affiliate"
	FieldStatut     = "statut"
	FieldCluster    = "cluster"
	FieldDomaine    = "domaine"
	FieldPlateforme = "plateforme"
)

// CanonicalFields lists every canonical field in display order. The natural key comes first.
var CanonicalFields = []string{
	FieldCUID,
	FieldIDHuawei,
	FieldNom,
	FieldPrenom,
	FieldMailHuawei,
	FieldMailOrange,
	FieldTelephone,
	FieldPerimeter,
	FieldAffiliate,
	FieldStatut,
	FieldCluster,
	FieldDomaine,
	FieldPlateforme,
}

// NormalizedRecord maps canonical field names to optional values.
// A nil value (or a missing entry) means the field is absent.
type NormalizedRecord map[string]*string

// Key returns the natural key, or "" when the record has none
func (r NormalizedRecord) Key() string {
	if v := r[FieldCUID]; v != nil {
		return *v
	}
	return ""
}

// Value returns the field value and whether it is present
func (r NormalizedRecord) Value(field string) (string, bool) {
	v := r[field]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Set stores a value for field
func (r NormalizedRecord) Set(field, value string) {
	v := value
	r[field] = &v
}

// Clone returns a deep copy
func (r NormalizedRecord) Clone() NormalizedRecord {
	out := make(NormalizedRecord, len(r))
	for k, v := range r {
		if v == nil {
			out[k] = nil
			continue
		}
		c := *v
		out[k] = &c
	}
	return out
}

// Present returns only the fields that carry a value
func (r NormalizedRecord) Present() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

// NormalizedRecordFrom builds a record from a present-only map
func NormalizedRecordFrom(fields map[string]string) NormalizedRecord {
	out := make(NormalizedRecord, len(fields))
	for k, v := range fields {
		out.Set(k, v)
	}
	return out
}

// FieldNames returns the record's field names, canonical ones first in canonical order
func (r NormalizedRecord) FieldNames() []string {
	seen := make(map[string]bool, len(r))
	names := make([]string, 0, len(r))
	for _, f := range CanonicalFields {
		if _, ok := r[f]; ok {
			names = append(names, f)
			seen[f] = true
		}
	}
	var extra []string
	for k := range r {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// IdentityRecord is the persisted identity of one person, keyed by CUID
type IdentityRecord struct {
	CUID        string    `json:"cuid" badgerhold:"key"`
	IDHuawei    *string   `json:"id_huawei"`
	Nom         *string   `json:"nom"`
	Prenom      *string   `json:"prenom"`
	MailHuawei  *string   `json:"mail_huawei"`
	MailOrange  *string   `json:"mail_orange"`
	Telephone   *string   `json:"telephone"`
	Perimeter   *string   `json:"perimeter"`
	Affiliate   *string   `json:"affiliate"`
	Statut      *string   `json:"statut"`
	Cluster     *string   `json:"cluster"`
	Domaine     *string   `json:"domaine"`
	Plateforme  *string   `json:"plateforme"`
	LastUpdated time.Time `json:"last_updated"` // not indexed: one pass stamps every identity with the same time
}

func (i *IdentityRecord) attributes() map[string]**string {
	return map[string]**string{
		FieldIDHuawei:   &i.IDHuawei,
		FieldNom:        &i.Nom,
		FieldPrenom:     &i.Prenom,
		FieldMailHuawei: &i.MailHuawei,
		FieldMailOrange: &i.MailOrange,
		FieldTelephone:  &i.Telephone,
		FieldPerimeter:  &i.Perimeter,
		FieldAffiliate:  &i.Affiliate,
		FieldStatut:     &i.Statut,
		FieldCluster:    &i.Cluster,
		FieldDomaine:    &i.Domaine,
		FieldPlateforme: &i.Plateforme,
	}
}

// NewIdentityRecord creates an identity from a normalized record.
// The record must carry a key.
func NewIdentityRecord(r NormalizedRecord, now time.Time) *IdentityRecord {
	i := &IdentityRecord{CUID: r.Key()}
	i.Overwrite(r, now)
	return i
}

// Overwrite replaces every non-key attribute with the values in r.
// Attributes absent from r become nil.
func (i *IdentityRecord) Overwrite(r NormalizedRecord, now time.Time) {
	for field, ptr := range i.attributes() {
		if v := r[field]; v != nil {
			c := *v
			*ptr = &c
		} else {
			*ptr = nil
		}
	}
	i.LastUpdated = now
}

// Fields returns the identity as a normalized record
func (i *IdentityRecord) Fields() NormalizedRecord {
	out := NormalizedRecord{}
	out.Set(FieldCUID, i.CUID)
	for field, ptr := range i.attributes() {
		if *ptr != nil {
			out.Set(field, **ptr)
		} else {
			out[field] = nil
		}
	}
	return out
}

// ReconciliationOutcome reports a committed reconciliation pass
type ReconciliationOutcome struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"` // rows without a natural key
}
