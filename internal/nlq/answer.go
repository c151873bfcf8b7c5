package nlq

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/fieldops/backend/internal/models"
)

const (
	GreetingMessage = `Hello! Ask me about salesmen or devices in repair, for example "how many devices are in repair in ALSAD?"`
	HelpMessage     = "I can help with questions like: \"how many salesmen are in Jeddah?\", " +
		"\"list devices in repair for ALSAD\", \"what is the status of serial number 12345?\", " +
		"\"how long has it been in repair?\" or \"are there any salesmen without SOTI?\""
	ClarifyKindMessage    = "I'm not sure which you mean. Are you asking about salesmen or devices in repair?"
	ClarifyPronounMessage = "I'm not sure which one you mean. Please mention a name or serial number."
	NoDataMessage         = "No data found. Check the salesmen and repair_devices tables!"
)

const (
	dateLayout     = "2006-01-02"
	maxSummaryRows = 5
)

// record is the view the templater needs over either collection.
type record interface {
	display() string
	summary() string
	subField(key string) (string, bool)
	since() *time.Time
}

type salesmanRecord struct{ models.Salesman }

func (s salesmanRecord) display() string { return s.Name }

func (s salesmanRecord) since() *time.Time { return s.AddedDate }

func (s salesmanRecord) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s), status %s", s.Name, s.Company, s.Branch, s.Status())
	if s.DeviceType != "" || s.DeviceSerial != "" {
		fmt.Fprintf(&b, ", device %s", strings.TrimSpace(s.DeviceType+" "+s.DeviceSerial))
	}
	if s.PrinterType != "" || s.PrinterSerial != "" {
		fmt.Fprintf(&b, ", printer %s", strings.TrimSpace(s.PrinterType+" "+s.PrinterSerial))
	}
	if !s.SOTI {
		b.WriteString(", no SOTI")
	}
	if s.Comments != "" {
		fmt.Fprintf(&b, ", comments: %s", s.Comments)
	}
	return b.String()
}

func (s salesmanRecord) subField(key string) (string, bool) {
	switch key {
	case subName:
		return s.Name, true
	case subCompany:
		return s.Company, true
	case subBranch:
		return s.Branch, true
	case subStatus:
		return s.Status(), true
	case subSerial:
		return joinNonEmpty(" / ", s.DeviceSerial, s.PrinterSerial), true
	case subType:
		return joinNonEmpty(" / ", s.DeviceType, s.PrinterType), true
	case subDate:
		return formatDate(s.AddedDate), true
	case subComments:
		return s.Comments, true
	}
	return "", false
}

type deviceRecord struct{ models.RepairDevice }

func (d deviceRecord) display() string { return d.SerialNumber }

func (d deviceRecord) since() *time.Time { return d.ReceivedDate }

func (d deviceRecord) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", d.SerialNumber)
	if t := d.Type(); t != "" {
		fmt.Fprintf(&b, " (%s)", t)
	}
	fmt.Fprintf(&b, " from %s", strings.TrimSpace(d.Company+" "+d.Branch))
	if d.Status != "" {
		fmt.Fprintf(&b, " is %s", d.Status)
	}
	if d.Issue != "" {
		fmt.Fprintf(&b, ", issue: %s", d.Issue)
	}
	if d.DeliveredBy != "" {
		fmt.Fprintf(&b, ", delivered by %s", d.DeliveredBy)
	}
	if d.ReceivedDate != nil {
		fmt.Fprintf(&b, ", received %s", formatDate(d.ReceivedDate))
	}
	return b.String()
}

func (d deviceRecord) subField(key string) (string, bool) {
	switch key {
	case subCompany:
		return d.Company, true
	case subBranch:
		return d.Branch, true
	case subStatus:
		return d.Status, true
	case subSerial:
		return d.SerialNumber, true
	case subType:
		return d.Type(), true
	case subDate:
		return formatDate(d.ReceivedDate), true
	case subComments:
		return d.Comments, true
	case subIssue:
		return d.Issue, true
	case subDeliveredBy:
		return d.DeliveredBy, true
	}
	return "", false
}

func recordsOf(kind EntityKind, salesmen []models.Salesman, devices []models.RepairDevice) []record {
	var out []record
	switch kind {
	case KindSalesmen:
		out = make([]record, 0, len(salesmen))
		for _, s := range salesmen {
			out = append(out, salesmanRecord{s})
		}
	case KindDevices:
		out = make([]record, 0, len(devices))
		for _, d := range devices {
			out = append(out, deviceRecord{d})
		}
	}
	return out
}

// Detail sub-fields a question can ask for.
const (
	subName        = "name"
	subCompany     = "company"
	subBranch      = "branch"
	subStatus      = "status"
	subSerial      = "serial"
	subType        = "type"
	subDate        = "date"
	subComments    = "comments"
	subIssue       = "issue"
	subDeliveredBy = "delivered_by"
)

var subFields = []struct {
	key   string
	words []string
}{
	{subName, []string{"name", "called"}},
	{subCompany, []string{"company"}},
	{subBranch, []string{"branch", "where", "location"}},
	{subStatus, []string{"status", "provisioning"}},
	{subSerial, []string{"serial"}},
	{subType, []string{"type", "model"}},
	{subDate, []string{"date", "when", "received", "added"}},
	{subComments, []string{"comment", "comments", "note", "notes"}},
	{subIssue, []string{"issue", "problem", "wrong"}},
	{subDeliveredBy, []string{"delivered", "deliverer", "brought"}},
}

func subFieldLabel(kind EntityKind, key string) string {
	switch key {
	case subSerial:
		return "serial number"
	case subDate:
		if kind == KindSalesmen {
			return "added date"
		}
		return "received date"
	case subDeliveredBy:
		return "delivery person"
	case subComments:
		return "comment"
	}
	return key
}

// lookupSubField maps a filter field onto the sub-field it would echo back,
// so "what is the issue of serial 123" does not count serial as requested.
func lookupSubField(field string) string {
	switch field {
	case FieldSerialNumber, FieldDeviceSerial, FieldPrinterSerial:
		return subSerial
	case FieldName:
		return subName
	case FieldDeliveredBy:
		return subDeliveredBy
	case FieldIssue:
		return subIssue
	case FieldComments:
		return subComments
	}
	return ""
}

// requestedSubFields returns the sub-fields the question asks about that
// exist on the given kind.
func requestedSubFields(q Question, kind EntityKind, f Filters) []string {
	var probe record = salesmanRecord{}
	if kind == KindDevices {
		probe = deviceRecord{}
	}
	skip := lookupSubField(f.Field)
	var out []string
	for _, sf := range subFields {
		if sf.key == skip || !q.HasSingular(sf.words...) {
			continue
		}
		if _, ok := probe.subField(sf.key); ok {
			out = append(out, sf.key)
		}
	}
	return out
}

// qualifiers renders the active filters as a phrase appended to a noun,
// e.g. " with tc21 in alsad jeddah without SOTI".
func qualifiers(f Filters) string {
	var b strings.Builder
	if f.Type != "" {
		b.WriteString(" with " + f.Type)
	}
	if f.Company != "" {
		b.WriteString(" in " + f.Company)
	}
	if f.Branch != "" {
		if f.Company != "" {
			b.WriteString(" " + f.Branch)
		} else {
			b.WriteString(" in " + f.Branch)
		}
	}
	if f.Status != "" {
		b.WriteString(" with status " + f.Status)
	}
	if f.NoSOTI {
		b.WriteString(" without SOTI")
	}
	if f.Field != "" && f.Value != "" {
		switch f.Field {
		case FieldName:
			b.WriteString(" named " + f.Value)
		case FieldDeliveredBy:
			b.WriteString(" delivered by " + f.Value)
		case FieldIssue:
			b.WriteString(" with issue " + f.Value)
		case FieldComments:
			b.WriteString(" with comments mentioning " + f.Value)
		default:
			b.WriteString(" with serial number " + f.Value)
		}
	}
	return b.String()
}

// setPhrase names a filtered collection, e.g. "devices in repair in alsad".
func setPhrase(kind EntityKind, f Filters) string {
	if kind == KindSalesmen {
		return "salesmen" + qualifiers(f)
	}
	return "devices in repair" + qualifiers(f)
}

func countAnswer(kind EntityKind, n int, f Filters) string {
	if kind == KindSalesmen {
		return fmt.Sprintf("%d %s%s %s in the list.", n, plural(n, "salesman"), qualifiers(f), isAre(n))
	}
	return fmt.Sprintf("%d %s %s in repair%s.", n, plural(n, "device"), isAre(n), qualifiers(f))
}

func listAnswer(kind EntityKind, recs []record, f Filters) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No %s to list.", setPhrase(kind, f))
	}
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		if d := r.display(); d != "" {
			names = append(names, d)
		}
	}
	return fmt.Sprintf("%s: %s.", capitalize(setPhrase(kind, f)), strings.Join(names, ", "))
}

func existenceAnswer(kind EntityKind, n int, f Filters) string {
	if n == 0 {
		return fmt.Sprintf("No, there aren't any %s.", setPhrase(kind, f))
	}
	if kind == KindSalesmen {
		return fmt.Sprintf("Yes, there %s %d %s%s.", isAre(n), n, plural(n, "salesman"), qualifiers(f))
	}
	return fmt.Sprintf("Yes, there %s %d %s in repair%s.", isAre(n), n, plural(n, "device"), qualifiers(f))
}

func detailAnswer(kind EntityKind, recs []record, q Question, f Filters) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No %s found.", setPhrase(kind, f))
	}
	if req := requestedSubFields(q, kind, f); len(req) == 1 {
		return subFieldAnswer(kind, recs, req[0])
	}
	if len(recs) == 1 {
		return recs[0].summary() + "."
	}

	lines := make([]string, 0, maxSummaryRows)
	for i, r := range recs {
		if i == maxSummaryRows {
			break
		}
		lines = append(lines, r.summary())
	}
	noun := "salesmen"
	if kind == KindDevices {
		noun = "devices"
	}
	out := fmt.Sprintf("I found %d %s%s: %s", len(recs), noun, qualifiers(f), strings.Join(lines, "; "))
	if more := len(recs) - maxSummaryRows; more > 0 {
		out += fmt.Sprintf(" ...and %d more", more)
	}
	return out + "."
}

// subFieldAnswer answers with one field's distinct values, in first-seen
// order, skipping blanks. Values differing only in case count once.
func subFieldAnswer(kind EntityKind, recs []record, key string) string {
	label := subFieldLabel(kind, key)
	seen := map[string]struct{}{}
	var values []string
	for _, r := range recs {
		v, _ := r.subField(key)
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, v)
	}
	switch len(values) {
	case 0:
		return fmt.Sprintf("No %s recorded.", label)
	case 1:
		return fmt.Sprintf("The %s is %s.", label, values[0])
	}
	return fmt.Sprintf("The %s are %s.", inflection.Plural(label), strings.Join(values, ", "))
}

func durationAnswer(kind EntityKind, recs []record, f Filters, now time.Time) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No %s found.", setPhrase(kind, f))
	}
	var days []int
	for _, r := range recs {
		if t := r.since(); t != nil {
			days = append(days, daysSince(now, *t))
		}
	}
	if len(days) == 0 {
		if kind == KindSalesmen {
			return "No added dates are recorded for those salesmen."
		}
		return "No received dates are recorded for those devices."
	}

	if len(recs) == 1 {
		d := days[0]
		if kind == KindSalesmen {
			return fmt.Sprintf("%s was added %d %s ago.", recs[0].display(), d, plural(d, "day"))
		}
		return fmt.Sprintf("Device %s has been in repair for %d %s.", recs[0].display(), d, plural(d, "day"))
	}

	total := 0
	for _, d := range days {
		total += d
	}
	avg := int(math.Round(float64(total) / float64(len(days))))
	if kind == KindSalesmen {
		return fmt.Sprintf("The %d salesmen%s were added %d %s ago on average.",
			len(days), qualifiers(f), avg, plural(avg, "day"))
	}
	return fmt.Sprintf("The %d devices%s have been in repair for %d %s on average.",
		len(days), qualifiers(f), avg, plural(avg, "day"))
}

// daysSince is the whole number of days between t and now, never negative.
func daysSince(now, t time.Time) int {
	d := int(math.Floor(now.Sub(t).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return inflection.Plural(noun)
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
