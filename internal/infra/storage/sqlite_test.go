package storage

import (
	"path/filepath"
	"testing"
	"time"

	"bcx_go/internal/domain"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestRecordAndListOrders(t *testing.T) {
	s := setupTestDB(t)

	submit := &domain.OrderRecord{
		Action:    domain.ActionSubmit,
		ClOrdID:   "0123456789abcdef0123",
		Symbol:    "BTC-GBP",
		Side:      string(domain.SideBuy),
		Price:     9.95,
		Qty:       0.01,
		Status:    domain.StatusSent,
		CreatedAt: time.Now(),
	}
	cancel := &domain.OrderRecord{
		Action:    domain.ActionCancel,
		OrderID:   "42",
		Symbol:    "BTC-GBP",
		Status:    domain.StatusSent,
		CreatedAt: time.Now(),
	}

	if err := s.RecordOrder(submit); err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
	if err := s.RecordOrder(cancel); err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
	if submit.ID == 0 || cancel.ID <= submit.ID {
		t.Errorf("expected increasing ids, got %d then %d", submit.ID, cancel.ID)
	}

	records, err := s.ListOrders(0)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].OrderID != "42" {
		t.Errorf("expected newest record first, got %+v", records[0])
	}
	if records[1].ClOrdID != submit.ClOrdID || records[1].Price != 9.95 {
		t.Errorf("unexpected submit record %+v", records[1])
	}
}

func TestListOrdersLimit(t *testing.T) {
	s := setupTestDB(t)
	for i := 0; i < 5; i++ {
		s.RecordOrder(&domain.OrderRecord{Action: domain.ActionSubmit, Status: domain.StatusSent})
	}

	records, err := s.ListOrders(3)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestCountByStatus(t *testing.T) {
	s := setupTestDB(t)
	s.RecordOrder(&domain.OrderRecord{Action: domain.ActionSubmit, Status: domain.StatusSent})
	s.RecordOrder(&domain.OrderRecord{Action: domain.ActionSubmit, Status: domain.StatusFailed, Error: "websocket not connected"})
	s.RecordOrder(&domain.OrderRecord{Action: domain.ActionCancel, Status: domain.StatusSent})

	tests := []struct {
		action, status string
		want           int64
	}{
		{domain.ActionSubmit, domain.StatusSent, 1},
		{domain.ActionSubmit, domain.StatusFailed, 1},
		{domain.ActionCancel, domain.StatusSent, 1},
		{domain.ActionCancel, domain.StatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.action+"_"+tt.status, func(t *testing.T) {
			got, err := s.CountByStatus(tt.action, tt.status)
			if err != nil {
				t.Fatalf("CountByStatus failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
