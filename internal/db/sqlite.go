package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldops/backend/internal/models"
)

// SQLiteSource reads the same two tables from a local sqlite file, for
// offline runs against an exported snapshot.
type SQLiteSource struct {
	DB *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS salesmen (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	company TEXT,
	branch TEXT,
	device_type TEXT,
	device_serial TEXT,
	printer_type TEXT,
	printer_serial TEXT,
	soti INTEGER NOT NULL DEFAULT 0,
	verified INTEGER NOT NULL DEFAULT 0,
	salesbuzz INTEGER NOT NULL DEFAULT 0,
	added_date TEXT,
	edited_date TEXT,
	comments TEXT
);
CREATE TABLE IF NOT EXISTS repair_devices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	serial_number TEXT UNIQUE,
	company TEXT,
	branch TEXT,
	device_type TEXT,
	printer_type TEXT,
	status TEXT,
	delivered_by TEXT,
	issue TEXT,
	received_date TEXT,
	repair_date TEXT
);`

func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteSource{DB: db}, nil
}

func (s *SQLiteSource) Close() error {
	return s.DB.Close()
}

func (s *SQLiteSource) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLiteSource) ListSalesmen(ctx context.Context) ([]models.Salesman, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT CAST(id AS TEXT), name, company, branch, device_type, device_serial, printer_type, printer_serial,
		       COALESCE(soti, 0), COALESCE(verified, 0), COALESCE(salesbuzz, 0), added_date, edited_date, comments
		FROM salesmen
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query salesmen: %w", err)
	}
	defer rows.Close()

	var out []models.Salesman
	for rows.Next() {
		var (
			m                               models.Salesman
			name, company, branch, comments sql.NullString
			deviceType, deviceSerial        sql.NullString
			printerType, printerSerial      sql.NullString
			added, edited                   sql.NullString
		)
		if err := rows.Scan(&m.ID, &name, &company, &branch, &deviceType, &deviceSerial, &printerType, &printerSerial,
			&m.SOTI, &m.Verified, &m.SalesBuzz, &added, &edited, &comments); err != nil {
			return nil, fmt.Errorf("scan salesman: %w", err)
		}
		m.Name = name.String
		m.Company = company.String
		m.Branch = branch.String
		m.DeviceType = deviceType.String
		m.DeviceSerial = deviceSerial.String
		m.PrinterType = printerType.String
		m.PrinterSerial = printerSerial.String
		m.Comments = comments.String
		m.AddedDate = parseTimestamp(added)
		m.EditedDate = parseTimestamp(edited)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteSource) ListRepairDevices(ctx context.Context) ([]models.RepairDevice, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT CAST(id AS TEXT), serial_number, company, branch, device_type, printer_type, status,
		       delivered_by, issue, received_date, repair_date
		FROM repair_devices
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query repair_devices: %w", err)
	}
	defer rows.Close()

	var out []models.RepairDevice
	for rows.Next() {
		var (
			d                               models.RepairDevice
			serial, company, branch, status sql.NullString
			deviceType, printerType         sql.NullString
			deliveredBy, issue              sql.NullString
			received, repaired              sql.NullString
		)
		if err := rows.Scan(&d.ID, &serial, &company, &branch, &deviceType, &printerType, &status,
			&deliveredBy, &issue, &received, &repaired); err != nil {
			return nil, fmt.Errorf("scan repair device: %w", err)
		}
		d.SerialNumber = serial.String
		d.Company = company.String
		d.Branch = branch.String
		d.DeviceType = deviceType.String
		d.PrinterType = printerType.String
		d.Status = status.String
		d.DeliveredBy = deliveredBy.String
		d.Issue = issue.String
		d.ReceivedDate = parseTimestamp(received)
		d.RepairDate = parseTimestamp(repaired)
		out = append(out, d)
	}
	return out, rows.Err()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the text forms sqlite exports commonly use.
// Unparseable values read as missing.
func parseTimestamp(v sql.NullString) *time.Time {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
