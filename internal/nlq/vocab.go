package nlq

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the closed word lists the extractor matches against.
// Member order is significant: the first member found in a question wins.
type Vocabulary struct {
	DeviceTypes []string          `yaml:"device_types"`
	Companies   []string          `yaml:"companies"`
	Branches    []string          `yaml:"branches"`
	Statuses    []string          `yaml:"statuses"`
	Typos       map[string]string `yaml:"typos"`
	Stopwords   []string          `yaml:"stopwords"`
}

func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		DeviceTypes: []string{"TC21", "TC26", "TC52", "TC57", "CT40", "CT60", "ZQ220", "ZQ320", "ZQ520", "ZQ630", "RW420"},
		Companies:   []string{"ALSAD", "Almarai", "Nadec", "Sadafco", "Al Rabie", "Nestle"},
		Branches:    []string{"Jeddah", "Riyadh", "Dammam", "Makkah", "Madinah", "Khobar", "Tabuk", "Abha", "Qassim", "Jizan"},
		Statuses:    []string{"Pending", "In Progress", "Completed"},
		Typos: map[string]string{
			"salesmans":  "salesmen",
			"salesmens":  "salesmen",
			"salemen":    "salesmen",
			"salesmn":    "salesmen",
			"salesmem":   "salesmen",
			"saleman":    "salesman",
			"devics":     "devices",
			"devises":    "devices",
			"divices":    "devices",
			"devive":     "device",
			"divice":     "device",
			"repiar":     "repair",
			"repar":      "repair",
			"reapir":     "repair",
			"pritner":    "printer",
			"printr":     "printer",
			"brnach":     "branch",
			"branh":      "branch",
			"comapny":    "company",
			"compnay":    "company",
			"hw":         "how",
			"mny":        "many",
			"lst":        "list",
			"pendng":     "pending",
			"pnding":     "pending",
			"compelted":  "completed",
			"completd":   "completed",
			"complete":   "completed",
			"progres":    "progress",
			"serail":     "serial",
			"seiral":     "serial",
			"numbr":      "number",
			"sotti":      "soti",
			"salesbuz":   "salesbuzz",
			"verfied":    "verified",
			"recieved":   "received",
			"recived":    "received",
			"deliverd":   "delivered",
			"jedah":      "jeddah",
			"riyad":      "riyadh",
			"damam":      "dammam",
			"makka":      "makkah",
			"madina":     "madinah",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file. Lists left empty keep their
// defaults, typos are merged over the default table and extra stopwords are
// appended to the built-in stoplist.
func LoadVocabulary(path string) (*Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var file Vocabulary
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	v := DefaultVocabulary()
	if len(file.DeviceTypes) > 0 {
		v.DeviceTypes = file.DeviceTypes
	}
	if len(file.Companies) > 0 {
		v.Companies = file.Companies
	}
	if len(file.Branches) > 0 {
		v.Branches = file.Branches
	}
	if len(file.Statuses) > 0 {
		v.Statuses = file.Statuses
	}
	for k, val := range file.Typos {
		v.Typos[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(val))
	}
	v.Stopwords = append(v.Stopwords, file.Stopwords...)
	return v, nil
}

// memberWords returns every word that appears in any vocabulary member.
func (v *Vocabulary) memberWords() map[string]struct{} {
	out := map[string]struct{}{}
	for _, list := range [][]string{v.DeviceTypes, v.Companies, v.Branches, v.Statuses} {
		for _, m := range list {
			for _, w := range Normalize(m, nil) {
				out[w] = struct{}{}
			}
		}
	}
	return out
}

func (v *Vocabulary) isStopword(token string) bool {
	if _, ok := stopwords[token]; ok {
		return true
	}
	for _, s := range v.Stopwords {
		if strings.EqualFold(s, token) {
			return true
		}
	}
	return false
}

var stopwords = toSet(
	// grammar
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being", "am", "do", "does", "did",
	"has", "have", "had", "having", "of", "in", "on", "at", "to", "for", "from", "with", "without",
	"by", "and", "or", "not", "no", "any", "some", "all", "there", "it", "that", "this", "these",
	"those", "them", "they", "their", "what", "whats", "which", "who", "whos", "whom", "where",
	"wheres", "when", "how", "hows", "why", "me", "my", "i", "you", "we", "our", "he", "she", "his",
	"her", "its", "can", "could", "please", "tell", "give", "get", "find", "about", "still", "now",
	"currently", "so", "far", "yet", "ago", "one", "isnt", "arent", "dont", "doesnt", "hasnt",
	"havent", "missing", "many", "much", "list", "show", "count", "total", "number", "long", "days",
	"day", "time", "since", "exist", "exists", "average", "details", "detail", "info", "information",
	"hi", "hello", "hey", "named", "called", "been", "out", "up", "as", "if", "than", "then",
	// domain
	"salesman", "salesmen", "salesperson", "salespeople", "sales", "device", "devices", "repair",
	"repairs", "repaired", "printer", "printers", "handheld", "serial", "status", "company", "branch",
	"type", "model", "date", "issue", "issues", "problem", "comments", "comment", "note", "notes",
	"name", "delivered", "received", "soti", "verified", "salesbuzz", "progress", "pending",
	"completed", "provisioning", "record", "records", "entry", "entries",
)

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
