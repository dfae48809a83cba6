package web

import (
	"testing"
	"time"

	"contact-picker/internal/model"
	"contact-picker/internal/picker"
)

func TestSessionStore_SweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	st := newSessionStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	initial := picker.New([]model.Contact{{ID: 1, Name: "Ann"}}, picker.Options{})
	idle := st.create(initial)
	busy := st.create(initial)

	now = now.Add(20 * time.Minute)
	if _, ok := st.get(busy.id); !ok {
		t.Fatalf("expected busy session")
	}

	now = now.Add(15 * time.Minute)
	if n := st.sweep(); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if _, ok := st.get(idle.id); ok {
		t.Fatalf("expected idle session evicted")
	}
	if _, ok := st.get(busy.id); !ok {
		t.Fatalf("expected recently used session kept")
	}
	if st.len() != 1 {
		t.Fatalf("expected 1 session left, got %d", st.len())
	}
}

func TestSessionStore_ZeroTTLKeepsEverything(t *testing.T) {
	t.Parallel()

	st := newSessionStore(0)
	st.create(picker.New(nil, picker.Options{}))
	st.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if n := st.sweep(); n != 0 || st.len() != 1 {
		t.Fatalf("expected no eviction, got n=%d len=%d", n, st.len())
	}
}

func TestSessionStore_GetRejectsNonUUIDs(t *testing.T) {
	t.Parallel()

	st := newSessionStore(time.Minute)
	if _, ok := st.get("../etc"); ok {
		t.Fatalf("expected malformed id rejected")
	}
}
