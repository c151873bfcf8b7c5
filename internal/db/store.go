package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/backend/internal/models"
)

// Store reads the salesmen and repair_devices tables from postgres.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const pgSalesmenQuery = `
	SELECT id::text, name, company, branch, device_type, device_serial, printer_type, printer_serial,
	       COALESCE(soti, false), COALESCE(verified, false), COALESCE(salesbuzz, false),
	       added_date, edited_date, comments
	FROM salesmen
	ORDER BY id`

const pgRepairDevicesQuery = `
	SELECT id::text, serial_number, company, branch, device_type, printer_type, status,
	       delivered_by, issue, received_date, repair_date
	FROM repair_devices
	ORDER BY id`

func (s *Store) ListSalesmen(ctx context.Context) ([]models.Salesman, error) {
	rows, err := s.Pool.Query(ctx, pgSalesmenQuery)
	if err != nil {
		return nil, fmt.Errorf("query salesmen: %w", err)
	}
	defer rows.Close()

	var out []models.Salesman
	for rows.Next() {
		var (
			m                               models.Salesman
			name, company, branch, comments *string
			deviceType, deviceSerial        *string
			printerType, printerSerial      *string
			added, edited                   *time.Time
		)
		if err := rows.Scan(&m.ID, &name, &company, &branch, &deviceType, &deviceSerial, &printerType, &printerSerial,
			&m.SOTI, &m.Verified, &m.SalesBuzz, &added, &edited, &comments); err != nil {
			return nil, fmt.Errorf("scan salesman: %w", err)
		}
		m.Name = derefString(name)
		m.Company = derefString(company)
		m.Branch = derefString(branch)
		m.DeviceType = derefString(deviceType)
		m.DeviceSerial = derefString(deviceSerial)
		m.PrinterType = derefString(printerType)
		m.PrinterSerial = derefString(printerSerial)
		m.Comments = derefString(comments)
		m.AddedDate = added
		m.EditedDate = edited
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListRepairDevices(ctx context.Context) ([]models.RepairDevice, error) {
	rows, err := s.Pool.Query(ctx, pgRepairDevicesQuery)
	if err != nil {
		return nil, fmt.Errorf("query repair_devices: %w", err)
	}
	defer rows.Close()

	var out []models.RepairDevice
	for rows.Next() {
		var (
			d                               models.RepairDevice
			serial, company, branch, status *string
			deviceType, printerType         *string
			deliveredBy, issue              *string
			received, repaired              *time.Time
		)
		if err := rows.Scan(&d.ID, &serial, &company, &branch, &deviceType, &printerType, &status,
			&deliveredBy, &issue, &received, &repaired); err != nil {
			return nil, fmt.Errorf("scan repair device: %w", err)
		}
		d.SerialNumber = derefString(serial)
		d.Company = derefString(company)
		d.Branch = derefString(branch)
		d.DeviceType = derefString(deviceType)
		d.PrinterType = derefString(printerType)
		d.Status = derefString(status)
		d.DeliveredBy = derefString(deliveredBy)
		d.Issue = derefString(issue)
		d.ReceivedDate = received
		d.RepairDate = repaired
		out = append(out, d)
	}
	return out, rows.Err()
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
