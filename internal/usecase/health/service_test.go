package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockIndex struct {
	built  bool
	chunks int
}

func (m *mockIndex) Built() bool { return m.built }
func (m *mockIndex) Chunks() int { return m.chunks }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockIndex{built: true, chunks: 4}, &mockChecker{}, &mockChecker{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"index", "embedding", "completion", "cache"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_IndexNotBuilt(t *testing.T) {
	svc := New(&mockIndex{built: false}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_EmptyIndex(t *testing.T) {
	svc := New(&mockIndex{built: true, chunks: 0}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_ProviderError(t *testing.T) {
	svc := New(
		&mockIndex{built: true, chunks: 4},
		&mockChecker{err: errors.New("timeout")},
		&mockChecker{},
		nil,
	)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
	if r.Checks["completion"] != CheckOK {
		t.Errorf("expected completion %q, got %q", CheckOK, r.Checks["completion"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockIndex{built: true, chunks: 4}, nil, nil, &mockPinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_NilCheckersSkipped(t *testing.T) {
	svc := New(&mockIndex{built: true, chunks: 1}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the index check, got %v", r.Checks)
	}
}
