package models

import "testing"

func TestSalesmanStatus(t *testing.T) {
	cases := []struct {
		name string
		s    Salesman
		want string
	}{
		{"no flags", Salesman{}, StatusPending},
		{"all flags", Salesman{Verified: true, SOTI: true, SalesBuzz: true}, StatusCompleted},
		{"soti only", Salesman{SOTI: true}, StatusInProgress},
		{"verified and salesbuzz", Salesman{Verified: true, SalesBuzz: true}, StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Status(); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestRepairDeviceType(t *testing.T) {
	d := RepairDevice{PrinterType: "ZQ320"}
	if d.Type() != "ZQ320" {
		t.Fatalf("expected printer type, got %q", d.Type())
	}
	d.DeviceType = "TC21"
	if d.Type() != "TC21" {
		t.Fatalf("expected device type, got %q", d.Type())
	}
}
