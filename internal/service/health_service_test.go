package service

import (
	"context"
	"errors"
	"testing"

	"studyflow/internal/queue"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"

	"github.com/rs/zerolog"
)

type stubChecker struct {
	pingErr, tableErr error
}

func (s stubChecker) Ping(context.Context) error        { return s.pingErr }
func (s stubChecker) ProbeTables(context.Context) error { return s.tableErr }

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthStatuses(t *testing.T) {
	cases := []struct {
		name    string
		checker stubChecker
		status  string
		code    int
	}{
		{"ok", stubChecker{}, HealthOK, 200},
		{"tables missing", stubChecker{tableErr: errors.New("relation does not exist")}, HealthDegraded, 503},
		{"unreachable", stubChecker{pingErr: errors.New("connection refused")}, HealthError, 500},
	}
	for _, tc := range cases {
		store := &repository.Store{Kind: repository.KindPostgres, Health: tc.checker}
		report := NewHealthService(store, nil, zerolog.Nop()).Check(context.Background())
		if report.Status != tc.status || report.StatusCode() != tc.code {
			t.Fatalf("%s: got %s/%d, want %s/%d", tc.name, report.Status, report.StatusCode(), tc.status, tc.code)
		}
		if !report.Database.Configured {
			t.Fatalf("%s: postgres store should report configured", tc.name)
		}
	}
}

func TestHealthMemoryStoreIsDegraded(t *testing.T) {
	report := NewHealthService(memory.NewStore(), stubPinger{err: errors.New("redis down")}, zerolog.Nop()).Check(context.Background())
	if report.Status != HealthDegraded || report.Store != repository.KindMemory {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Database.Configured || report.Database.Connected {
		t.Fatalf("memory store must not report a database: %+v", report.Database)
	}
	if report.Cache == nil || report.Cache.Connected || report.Cache.Error == nil {
		t.Fatalf("expected cache failure to be reported, got %+v", report.Cache)
	}
}

func TestDLQRecord(t *testing.T) {
	mem := memory.New()
	svc := NewDLQService(mem)
	d := queue.Delivery{ID: "42", Job: queue.Job{DocumentID: "doc-1"}, Attempt: 6}
	if err := svc.Record(context.Background(), "document_queue", d, "max deliveries exceeded"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	letters := mem.DeadLetters()
	if len(letters) != 1 {
		t.Fatalf("expected one dead letter, got %d", len(letters))
	}
	got := letters[0]
	if got.QueueName != "document_queue" || got.MessageID != "42" || got.Status != "unprocessed" {
		t.Fatalf("unexpected dead letter %+v", got)
	}
	if got.Payload == "" || got.Attributes == nil {
		t.Fatalf("payload and attributes should be populated: %+v", got)
	}
}
