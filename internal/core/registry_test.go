package core

import "testing"

func TestRegistryRegisterDefaults(t *testing.T) {
	reg := NewRegistry()

	a := reg.Register()
	b := reg.Register()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d, want 2", reg.Len())
	}

	sess, err := reg.Lookup(a)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if sess.Name != DefaultName || sess.InRoom() || sess.ConnectedAt.IsZero() {
		t.Fatalf("unexpected new session: %+v", sess)
	}
}

func TestRegistrySetName(t *testing.T) {
	reg := NewRegistry()
	id := reg.Register()

	if err := reg.SetName(id, "  alice  "); err != nil {
		t.Fatalf("set name: %v", err)
	}
	sess, _ := reg.Lookup(id)
	if sess.Name != "alice" {
		t.Fatalf("name = %q, want trimmed %q", sess.Name, "alice")
	}

	expectErrorIs(t, reg.SetName(id, "   "), ErrEmptyName)
	expectErrorIs(t, reg.SetName(id, ""), ErrEmptyName)
	sess, _ = reg.Lookup(id)
	if sess.Name != "alice" {
		t.Fatalf("blank rename changed the name to %q", sess.Name)
	}

	expectErrorIs(t, reg.SetName("ghost", "bob"), ErrSessionNotFound)
}

func TestRegistryLookupReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	id := reg.Register()

	sess, _ := reg.Lookup(id)
	sess.Name = "mutated"

	again, _ := reg.Lookup(id)
	if again.Name != DefaultName {
		t.Fatalf("stored session changed through a copy: %q", again.Name)
	}
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	id := reg.Register()

	if !reg.Unregister(id) {
		t.Fatal("first unregister reported nothing removed")
	}
	if reg.Unregister(id) {
		t.Fatal("second unregister reported a removal")
	}

	_, err := reg.Lookup(id)
	expectErrorIs(t, err, ErrSessionNotFound)
	if reg.Len() != 0 {
		t.Fatalf("len = %d, want 0", reg.Len())
	}
}

func TestRegistryNeverReusesIDs(t *testing.T) {
	reg := newRegistry(newIssuer(), func() string { return "same" }, fixedClock)

	first := reg.Register()
	reg.Unregister(first)
	second := reg.Register()

	if first != "same" {
		t.Fatalf("first id = %q, want generator output", first)
	}
	if first == second {
		t.Fatalf("id %q issued twice", first)
	}
}
