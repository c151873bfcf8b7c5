package models

import (
	"strings"
	"time"
)

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

type Salesman struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	Company       string     `json:"company"`
	Branch        string     `json:"branch"`
	DeviceType    string     `json:"device_type,omitempty"`
	DeviceSerial  string     `json:"device_serial,omitempty"`
	PrinterType   string     `json:"printer_type,omitempty"`
	PrinterSerial string     `json:"printer_serial,omitempty"`
	SOTI          bool       `json:"soti"`
	Verified      bool       `json:"verified"`
	SalesBuzz     bool       `json:"salesbuzz"`
	AddedDate     *time.Time `json:"added_date,omitempty"`
	EditedDate    *time.Time `json:"edited_date,omitempty"`
	Comments      string     `json:"comments,omitempty"`
}

// Status is the provisioning status derived from the verified, soti and
// salesbuzz flags. It is never stored.
func (s Salesman) Status() string {
	switch {
	case s.Verified && s.SOTI && s.SalesBuzz:
		return StatusCompleted
	case !s.Verified && !s.SOTI && !s.SalesBuzz:
		return StatusPending
	default:
		return StatusInProgress
	}
}

type RepairDevice struct {
	ID           string     `json:"id,omitempty"`
	SerialNumber string     `json:"serial_number"`
	Company      string     `json:"company"`
	Branch       string     `json:"branch"`
	DeviceType   string     `json:"device_type,omitempty"`
	PrinterType  string     `json:"printer_type,omitempty"`
	Status       string     `json:"status"`
	DeliveredBy  string     `json:"delivered_by,omitempty"`
	Issue        string     `json:"issue,omitempty"`
	Comments     string     `json:"comments,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
	RepairDate   *time.Time `json:"repair_date,omitempty"`
}

// Type returns the populated one of device_type and printer_type.
func (d RepairDevice) Type() string {
	if strings.TrimSpace(d.DeviceType) != "" {
		return d.DeviceType
	}
	return d.PrinterType
}
