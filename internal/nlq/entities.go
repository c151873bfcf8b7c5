package nlq

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

type EntityKind string

const (
	KindNone     EntityKind = ""
	KindSalesmen EntityKind = "salesmen"
	KindDevices  EntityKind = "devices"
)

// Lookup fields: record columns a free-text value can be matched against.
const (
	FieldSerialNumber  = "serial_number"
	FieldDeviceSerial  = "device_serial"
	FieldPrinterSerial = "printer_serial"
	FieldName          = "name"
	FieldDeliveredBy   = "delivered_by"
	FieldIssue         = "issue"
	FieldComments      = "comments"
)

// lookupFields are tested in order against the question text, with
// underscores replaced by spaces.
var lookupFields = []struct {
	phrase string
	field  string
}{
	{"device serial", FieldDeviceSerial},
	{"printer serial", FieldPrinterSerial},
	{"serial number", FieldSerialNumber},
	{"delivered by", FieldDeliveredBy},
	{"name", FieldName},
	{"issue", FieldIssue},
	{"comment", FieldComments},
}

var (
	salesmenWords = []string{"salesmen", "salesman", "salesperson", "salespeople", "sales"}
	deviceWords   = []string{"devices", "device", "repair", "repairs", "repaired"}
	pronounWords  = toSet("it", "that")
	negationWords = toSet("not", "no", "without", "dont", "doesnt", "hasnt", "havent", "missing")
)

// Entities is what the extractor pulls out of one question. Every
// vocabulary value is the lowercased, normalized member.
type Entities struct {
	Kind    EntityKind `json:"kind,omitempty"`
	Type    string     `json:"type,omitempty"`
	Company string     `json:"company,omitempty"`
	Branch  string     `json:"branch,omitempty"`
	Status  string     `json:"status,omitempty"`
	Field   string     `json:"field,omitempty"`
	Value   string     `json:"value,omitempty"`
	NoSOTI  bool       `json:"no_soti,omitempty"`
	Pronoun bool       `json:"pronoun,omitempty"`
}

// HasConstraint reports whether the question narrows the record set itself.
func (e Entities) HasConstraint() bool {
	return e.Type != "" || e.Company != "" || e.Branch != "" || e.Status != "" || e.NoSOTI ||
		(e.Field != "" && e.Value != "")
}

func (e Entities) Filters() Filters {
	f := Filters{
		Type:    e.Type,
		Company: e.Company,
		Branch:  e.Branch,
		Status:  e.Status,
		NoSOTI:  e.NoSOTI,
	}
	if e.Field != "" && e.Value != "" {
		f.Field = e.Field
		f.Value = e.Value
	}
	return f
}

// Extract scans normalized tokens against the vocabulary. It has no side
// effects and returns the same result for the same input.
func Extract(tokens []string, v *Vocabulary) Entities {
	text := strings.Join(tokens, " ")
	set := toSet(tokens...)

	e := Entities{
		Kind:    kindOf(set),
		Type:    firstMember(v.DeviceTypes, text, set),
		Company: firstMember(v.Companies, text, set),
		Branch:  firstMember(v.Branches, text, set),
		Status:  firstMember(v.Statuses, text, set),
		NoSOTI:  negatedSOTI(tokens),
	}
	for t := range pronounWords {
		if _, ok := set[t]; ok {
			e.Pronoun = true
		}
	}
	e.Field, e.Value = extractValue(tokens, text, v)
	// serial_number only exists on repair_devices.
	if e.Kind == KindNone && e.Field == FieldSerialNumber && e.Value != "" {
		e.Kind = KindDevices
	}
	return e
}

func kindOf(set map[string]struct{}) EntityKind {
	for _, w := range salesmenWords {
		if _, ok := set[w]; ok {
			return KindSalesmen
		}
	}
	for _, w := range deviceWords {
		if _, ok := set[w]; ok {
			return KindDevices
		}
	}
	return KindNone
}

// firstMember returns the first vocabulary member, in declaration order,
// that is a token of the question or a substring of its text.
func firstMember(members []string, text string, set map[string]struct{}) string {
	for _, m := range members {
		norm := normalizeValue(m)
		if norm == "" {
			continue
		}
		if _, ok := set[norm]; ok {
			return norm
		}
		if strings.Contains(text, norm) {
			return norm
		}
	}
	return ""
}

func negatedSOTI(tokens []string) bool {
	negated := false
	for _, t := range tokens {
		if _, ok := negationWords[t]; ok {
			negated = true
			continue
		}
		if negated && t == "soti" {
			return true
		}
	}
	return false
}

// extractValue finds a free-text value and the field it should be matched
// against. "serial number X" wins, then any digit-bearing token (treated
// as a serial), then the last leftover token paired with a named text
// field. A value with no field is returned but never used for filtering.
func extractValue(tokens []string, text string, v *Vocabulary) (string, string) {
	serialField := FieldSerialNumber
	for _, lf := range lookupFields[:2] {
		if strings.Contains(text, lf.phrase) {
			serialField = lf.field
		}
	}

	for i, t := range tokens {
		if t != "serial" {
			continue
		}
		next := i + 1
		if next < len(tokens) && tokens[next] == "number" {
			next++
		}
		if next < len(tokens) && isCandidate(tokens[next], v, nil) {
			return serialField, tokens[next]
		}
	}

	vocabWords := v.memberWords()
	var candidates []string
	for _, t := range tokens {
		if isCandidate(t, v, vocabWords) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return "", ""
	}
	for _, c := range candidates {
		if hasDigit(c) {
			return serialField, c
		}
	}

	value := candidates[len(candidates)-1]
	for _, lf := range lookupFields[3:] {
		if strings.Contains(text, lf.phrase) {
			return lf.field, value
		}
	}
	return "", value
}

// isCandidate rejects stopwords in singular or plural form, so "names" is
// never read as a value.
func isCandidate(token string, v *Vocabulary, vocabWords map[string]struct{}) bool {
	if len(token) < 2 || v.isStopword(token) || v.isStopword(inflection.Singular(token)) {
		return false
	}
	if _, ok := vocabWords[token]; ok {
		return false
	}
	return true
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
