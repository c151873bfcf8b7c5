package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteSourceReadsBothTables(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	_, err = src.DB.ExecContext(ctx, `
		INSERT INTO salesmen (name, company, branch, device_type, device_serial, soti, verified, salesbuzz, added_date)
		VALUES ('Ahmed', 'ALSAD', 'Jeddah', 'TC21', 'DS100', 1, 1, 0, '2024-05-01'),
		       ('Bilal', 'Nadec', 'Riyadh', NULL, NULL, 0, 0, 0, NULL);
		INSERT INTO repair_devices (serial_number, company, branch, printer_type, status, delivered_by, received_date)
		VALUES ('SN1', 'ALSAD', 'Jeddah', 'ZQ320', 'Pending', 'Omar', '2024-05-20 08:30:00');`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	salesmen, err := src.ListSalesmen(ctx)
	if err != nil {
		t.Fatalf("list salesmen: %v", err)
	}
	if len(salesmen) != 2 {
		t.Fatalf("expected 2 salesmen, got %d", len(salesmen))
	}
	ahmed := salesmen[0]
	if ahmed.Name != "Ahmed" || !ahmed.SOTI || !ahmed.Verified || ahmed.SalesBuzz {
		t.Fatalf("unexpected salesman: %+v", ahmed)
	}
	if ahmed.Status() != "In Progress" {
		t.Fatalf("expected derived In Progress, got %s", ahmed.Status())
	}
	if ahmed.AddedDate == nil || !ahmed.AddedDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected added date: %v", ahmed.AddedDate)
	}
	if salesmen[1].DeviceType != "" || salesmen[1].AddedDate != nil {
		t.Fatalf("expected nulls to read as empty: %+v", salesmen[1])
	}

	devices, err := src.ListRepairDevices(ctx)
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 1 || devices[0].Type() != "ZQ320" || devices[0].DeliveredBy != "Omar" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
	if devices[0].ReceivedDate == nil || devices[0].RepairDate != nil {
		t.Fatalf("unexpected dates: %+v", devices[0])
	}
}

func TestSQLiteSourceReadsMinimalDeviceTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "minimal.db")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	_, err = raw.ExecContext(ctx, `
		CREATE TABLE repair_devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			serial_number TEXT, company TEXT, branch TEXT, device_type TEXT, printer_type TEXT,
			status TEXT, delivered_by TEXT, issue TEXT, received_date TEXT, repair_date TEXT
		);
		INSERT INTO repair_devices (serial_number, company, status) VALUES ('SN9', 'Nadec', 'Pending');`)
	_ = raw.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	src, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	devices, err := src.ListRepairDevices(ctx)
	if err != nil {
		t.Fatalf("list devices without a comments column: %v", err)
	}
	if len(devices) != 1 || devices[0].SerialNumber != "SN9" || devices[0].Comments != "" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := store.ListSalesmen(ctx); err != nil {
		t.Fatalf("list salesmen: %v", err)
	}
	if _, err := store.ListRepairDevices(ctx); err != nil {
		t.Fatalf("list devices: %v", err)
	}
}
