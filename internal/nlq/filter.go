package nlq

import (
	"strings"

	"github.com/fieldops/backend/internal/models"
)

// Filters are the constraints applied to one record collection. String
// values are stored normalized; an empty value means "no constraint".
type Filters struct {
	Type    string `json:"type,omitempty"`
	Company string `json:"company,omitempty"`
	Branch  string `json:"branch,omitempty"`
	Status  string `json:"status,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	NoSOTI  bool   `json:"no_soti,omitempty"`
}

func (f Filters) IsZero() bool {
	return f == Filters{}
}

// inherit fills the company, branch, type and status the question left out
// from the previous turn's filters. Field/value and SOTI are never carried.
func (f Filters) inherit(prev Filters) Filters {
	if f.Company == "" {
		f.Company = prev.Company
	}
	if f.Branch == "" {
		f.Branch = prev.Branch
	}
	if f.Type == "" {
		f.Type = prev.Type
	}
	if f.Status == "" {
		f.Status = prev.Status
	}
	return f
}

func FilterSalesmen(in []models.Salesman, f Filters) []models.Salesman {
	out := make([]models.Salesman, 0, len(in))
	for _, s := range in {
		if f.Type != "" && !eqValue(s.DeviceType, f.Type) && !eqValue(s.PrinterType, f.Type) {
			continue
		}
		if f.Company != "" && !eqValue(s.Company, f.Company) {
			continue
		}
		if f.Branch != "" && !eqValue(s.Branch, f.Branch) {
			continue
		}
		if f.Status != "" && !eqValue(s.Status(), f.Status) {
			continue
		}
		if f.NoSOTI && s.SOTI {
			continue
		}
		if f.Field != "" && f.Value != "" {
			if text, ok := salesmanField(s, f.Field); ok && !containsValue(text, f.Value) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func FilterDevices(in []models.RepairDevice, f Filters) []models.RepairDevice {
	out := make([]models.RepairDevice, 0, len(in))
	for _, d := range in {
		if f.Type != "" && !eqValue(d.DeviceType, f.Type) && !eqValue(d.PrinterType, f.Type) {
			continue
		}
		if f.Company != "" && !eqValue(d.Company, f.Company) {
			continue
		}
		if f.Branch != "" && !eqValue(d.Branch, f.Branch) {
			continue
		}
		if f.Status != "" && !eqValue(d.Status, f.Status) {
			continue
		}
		if f.Field != "" && f.Value != "" {
			if text, ok := deviceField(d, f.Field); ok && !containsValue(text, f.Value) {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// salesmanField returns the text a lookup field matches against. ok is
// false when the field does not exist on salesmen, in which case the
// constraint is ignored.
func salesmanField(s models.Salesman, field string) (string, bool) {
	switch field {
	case FieldName:
		return s.Name, true
	case FieldSerialNumber:
		return s.DeviceSerial + " " + s.PrinterSerial, true
	case FieldDeviceSerial:
		return s.DeviceSerial, true
	case FieldPrinterSerial:
		return s.PrinterSerial, true
	case FieldComments:
		return s.Comments, true
	}
	return "", false
}

func deviceField(d models.RepairDevice, field string) (string, bool) {
	switch field {
	case FieldSerialNumber, FieldDeviceSerial, FieldPrinterSerial:
		return d.SerialNumber, true
	case FieldDeliveredBy:
		return d.DeliveredBy, true
	case FieldIssue:
		return d.Issue, true
	case FieldComments:
		return d.Comments, true
	}
	return "", false
}

func eqValue(stored, target string) bool {
	return normalizeValue(stored) == target
}

func containsValue(stored, target string) bool {
	return strings.Contains(normalizeValue(stored), target)
}
