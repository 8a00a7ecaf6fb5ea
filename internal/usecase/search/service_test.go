package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	"github.com/kailas-cloud/figdex/internal/domain/search/shape"
	logpkg "github.com/kailas-cloud/figdex/internal/logger"
)

// --- Mocks ---

type mockBackend struct {
	records []result.Record
	err     error
	calls   int
	last    *request.Request
	onCall  func()
}

func (m *mockBackend) Search(_ context.Context, req *request.Request) ([]result.Record, error) {
	m.calls++
	m.last = req
	if m.onCall != nil {
		m.onCall()
	}
	return m.records, m.err
}

func rec(id string, score float64) result.Record {
	return result.Record{ID: id, Name: id, SearchScore: score}
}

// --- Selection ---

func TestSelection_UseManaged(t *testing.T) {
	tests := []struct {
		sel  Selection
		want bool
	}{
		{Selection{Enabled: true}, true},
		{Selection{Enabled: true, TestMode: true}, false},
		{Selection{}, false},
		{Selection{TestMode: true}, false},
	}
	for _, tt := range tests {
		if got := tt.sel.UseManaged(); got != tt.want {
			t.Errorf("%+v.UseManaged() = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestSelector_DisabledUsesFallbackOnly(t *testing.T) {
	managed := &mockBackend{records: []result.Record{rec("m", 1)}}
	fallback := &mockBackend{records: []result.Record{rec("f", 1)}}

	svc := New(NewSelector(Selection{Enabled: false}, managed, fallback, zap.NewNop()), request.Limits{})
	got, err := svc.WordWheel(context.Background(), "miku", "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if managed.calls != 0 {
		t.Errorf("managed calls = %d, want 0", managed.calls)
	}
	if len(got) != 1 || got[0].ID != "f" {
		t.Errorf("got %+v", got)
	}
}

func TestSelector_TestModeUsesFallback(t *testing.T) {
	managed := &mockBackend{records: []result.Record{rec("m", 1)}}
	fallback := &mockBackend{records: []result.Record{rec("f", 1)}}

	sel := NewSelector(Selection{Enabled: true, TestMode: true}, managed, fallback, zap.NewNop())
	svc := New(sel, request.Limits{})
	if _, err := svc.FullSearch(context.Background(), "miku", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if managed.calls != 0 || fallback.calls != 1 {
		t.Errorf("managed=%d fallback=%d", managed.calls, fallback.calls)
	}
}

func TestSelector_ManagedServes(t *testing.T) {
	managed := &mockBackend{records: []result.Record{rec("m", 3)}}
	fallback := &mockBackend{}

	svc := New(NewSelector(Selection{Enabled: true}, managed, fallback, zap.NewNop()), request.Limits{})
	got, err := svc.Partial(context.Background(), "miku", "u1", request.Page{Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
	if len(got) != 1 || got[0].ID != "m" {
		t.Errorf("got %+v", got)
	}
}

func TestSelector_ManagedErrorFallsBack(t *testing.T) {
	managed := &mockBackend{err: errors.New("connection refused")}
	fallback := &mockBackend{records: []result.Record{rec("f1", 2), rec("f2", 1)}}

	svc := New(NewSelector(Selection{Enabled: true}, managed, fallback, zap.NewNop()), request.Limits{})
	got, err := svc.WordWheel(context.Background(), "miku", "u1", 10)
	if err != nil {
		t.Fatalf("managed error leaked: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if managed.calls != 1 || fallback.calls != 1 {
		t.Errorf("managed=%d fallback=%d", managed.calls, fallback.calls)
	}
	if fallback.last != managed.last {
		t.Error("fallback did not receive the same request")
	}
}

func TestSelector_FallbackWarningUsesRequestLogger(t *testing.T) {
	managed := &mockBackend{err: errors.New("connection refused")}
	fallback := &mockBackend{records: []result.Record{rec("f1", 1)}}

	baseCore, baseLogs := observer.New(zapcore.DebugLevel)
	reqCore, reqLogs := observer.New(zapcore.DebugLevel)
	ctx := logpkg.ContextWithLogger(context.Background(),
		zap.New(reqCore).With(zap.String("request_id", "req-1")))

	svc := New(NewSelector(Selection{Enabled: true}, managed, fallback, zap.New(baseCore)), request.Limits{})
	if _, err := svc.WordWheel(ctx, "miku", "u1", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if baseLogs.Len() != 0 {
		t.Errorf("constructor logger got %d entries", baseLogs.Len())
	}
	entries := reqLogs.FilterMessage("Managed search failed, falling back").All()
	if len(entries) != 1 {
		t.Fatalf("expected one fallback warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Errorf("request_id = %v", got)
	}
}

func TestSelector_CancelledContextSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	managed := &mockBackend{err: errors.New("i/o timeout"), onCall: cancel}
	fallback := &mockBackend{records: []result.Record{rec("f", 1)}}

	svc := New(NewSelector(Selection{Enabled: true}, managed, fallback, zap.NewNop()), request.Limits{})
	_, err := svc.WordWheel(ctx, "miku", "u1", 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
}

func TestSelector_FallbackErrorSurfaces(t *testing.T) {
	managed := &mockBackend{err: errors.New("down")}
	fallback := &mockBackend{err: errors.New("disk I/O error")}

	svc := New(NewSelector(Selection{Enabled: true}, managed, fallback, zap.NewNop()), request.Limits{})
	_, err := svc.FullSearch(context.Background(), "miku", "u1")
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- Service ---

func TestService_BelowMinimumSkipsBackend(t *testing.T) {
	backend := &mockBackend{records: []result.Record{rec("x", 1)}}
	svc := New(backend, request.Limits{})

	tests := []struct {
		name string
		run  func() ([]result.Record, error)
	}{
		{"wordwheel two chars", func() ([]result.Record, error) {
			return svc.WordWheel(context.Background(), "mi", "u1", 0)
		}},
		{"partial padded", func() ([]result.Record, error) {
			return svc.Partial(context.Background(), "  ab  ", "u1", request.Page{})
		}},
		{"full empty", func() ([]result.Record, error) {
			return svc.FullSearch(context.Background(), "   ", "u1")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("got %v, want empty non-nil slice", got)
			}
		})
	}
	if backend.calls != 0 {
		t.Errorf("backend calls = %d, want 0", backend.calls)
	}
}

func TestService_MinimumLengthRuns(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend, request.Limits{})

	got, err := svc.WordWheel(context.Background(), "sab", "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
	if got == nil {
		t.Error("nil records, want empty slice")
	}
}

func TestService_FullSearchOneCharacter(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend, request.Limits{})
	if _, err := svc.FullSearch(context.Background(), "x", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestService_RequestShapeAndPage(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend, request.Limits{DefaultLimit: 10, MaxLimit: 50, FullLimit: 20})

	if _, err := svc.Partial(context.Background(), "miku", "u1", request.Page{Limit: 500, Offset: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.last.Shape() != shape.Partial {
		t.Errorf("shape = %q", backend.last.Shape())
	}
	if backend.last.Limit() != 50 || backend.last.Offset() != 10 {
		t.Errorf("limit=%d offset=%d", backend.last.Limit(), backend.last.Offset())
	}

	if _, err := svc.FullSearch(context.Background(), "miku", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.last.Limit() != 20 {
		t.Errorf("full limit = %d, want 20", backend.last.Limit())
	}
}

func TestService_InvalidInput(t *testing.T) {
	backend := &mockBackend{}
	svc := New(backend, request.Limits{})

	_, err := svc.WordWheel(context.Background(), "miku", "", 0)
	if !errors.Is(err, domain.ErrOwnerRequired) {
		t.Errorf("error = %v, want ErrOwnerRequired", err)
	}
	_, err = svc.Partial(context.Background(), "miku", "u1", request.Page{Offset: -1})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend calls = %d, want 0", backend.calls)
	}
}

func TestService_BackendErrorWrapped(t *testing.T) {
	cause := errors.New("boom")
	svc := New(&mockBackend{err: cause}, request.Limits{})
	_, err := svc.FullSearch(context.Background(), "miku", "u1")
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}
