package nlq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fieldops/backend/internal/ai"
	"github.com/fieldops/backend/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func testDevices() []models.RepairDevice {
	return []models.RepairDevice{
		{SerialNumber: "SN1", Company: "ALSAD", Branch: "Jeddah", DeviceType: "TC21", Status: "Pending",
			DeliveredBy: "Omar", Issue: "screen broken", ReceivedDate: daysAgo(10)},
		{SerialNumber: "SN2", Company: "ALSAD", Branch: "Riyadh", PrinterType: "ZQ320", Status: "Completed",
			DeliveredBy: "Khalid", Issue: "paper jam", ReceivedDate: daysAgo(20)},
		{SerialNumber: "SN3", Company: "alsad", Branch: "jeddah", DeviceType: "TC26", Status: "In Progress"},
		{SerialNumber: "SN4", Company: "Nadec", Branch: "Jeddah", DeviceType: "TC21", Status: "Pending", ReceivedDate: daysAgo(3)},
		{SerialNumber: "SN5", Company: "Almarai", Branch: "Dammam", DeviceType: "CT40", Status: "Pending"},
	}
}

func testSalesmen() []models.Salesman {
	return []models.Salesman{
		{Name: "Ahmed", Company: "ALSAD", Branch: "Jeddah", DeviceType: "TC21", DeviceSerial: "DS100",
			PrinterType: "ZQ320", PrinterSerial: "PS200", SOTI: true, Verified: true, SalesBuzz: true, AddedDate: daysAgo(30)},
		{Name: "Bilal", Company: "ALSAD", Branch: "Riyadh", Verified: true, AddedDate: daysAgo(10), Comments: "needs new battery"},
		{Name: "Omar", Company: "Nadec", Branch: "Jeddah"},
	}
}

type fakeSource struct {
	salesmen    []models.Salesman
	devices     []models.RepairDevice
	salesmenErr error
	devicesErr  error
	calls       int32
}

func (f *fakeSource) ListSalesmen(ctx context.Context) ([]models.Salesman, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.salesmen, f.salesmenErr
}

func (f *fakeSource) ListRepairDevices(ctx context.Context) ([]models.RepairDevice, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.devices, f.devicesErr
}

type fakeStore struct {
	mu    sync.Mutex
	convs map[string]Conversation
}

func newFakeStore() *fakeStore {
	return &fakeStore{convs: map[string]Conversation{}}
}

func (s *fakeStore) Load(ctx context.Context, sessionID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return nil, ErrNoConversation
	}
	return &c, nil
}

func (s *fakeStore) Save(ctx context.Context, sessionID string, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[sessionID] = *c
	return nil
}

func (s *fakeStore) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, sessionID)
	return nil
}

type fakeAssistant struct {
	answer  string
	err     error
	prompt  string
	history []ai.ChatMessage
}

func (f *fakeAssistant) Ask(ctx context.Context, prompt string, history []ai.ChatMessage) (string, error) {
	f.prompt = prompt
	f.history = history
	return f.answer, f.err
}
