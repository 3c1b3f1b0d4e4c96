package settings

import "testing"

func TestSnapshot_WithCopyOnWrite(t *testing.T) {
	base := Snapshot{"theme": "light"}
	next := base.With("theme", "dark")

	if v, _ := base.Get("theme"); v != "light" {
		t.Errorf("Expected base snapshot untouched, got %v", v)
	}
	if v, _ := next.Get("theme"); v != "dark" {
		t.Errorf("Expected new snapshot to hold 'dark', got %v", v)
	}
}

func TestSnapshot_WithCopiesSlices(t *testing.T) {
	sounds := []string{"messages"}
	snap := Snapshot{}.With("notification_sounds", sounds)

	sounds[0] = "mutated"
	v, _ := snap.Get("notification_sounds")
	if v.([]string)[0] != "messages" {
		t.Error("With must copy slice values")
	}
}

func TestSnapshot_Equal(t *testing.T) {
	a := Snapshot{"theme": "dark", "sounds": []string{"messages"}}
	b := Snapshot{"theme": "dark", "sounds": []string{"messages"}}
	c := Snapshot{"theme": "dark", "sounds": []string{"mentions"}}

	if !a.Equal(b) {
		t.Error("Expected equal snapshots")
	}
	if a.Equal(c) {
		t.Error("Expected differing slice values to compare unequal")
	}
	if a.Equal(Snapshot{"theme": "dark"}) {
		t.Error("Expected differing key sets to compare unequal")
	}
}
