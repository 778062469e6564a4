package category

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.toml")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	if _, ok := s.Lookup("ls"); ok {
		t.Fatal("fresh store has an assignment for ls")
	}

	if err := s.Store("ls", Simple); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Store("vim", InteractiveTUI); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Reopen from disk and verify persistence.
	s2, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	k, ok := s2.Lookup("ls")
	if !ok || k != Simple {
		t.Errorf("Lookup(ls) = %q, %v; want %q, true", k, ok, Simple)
	}
	k, ok = s2.Lookup("vim")
	if !ok || k != InteractiveTUI {
		t.Errorf("Lookup(vim) = %q, %v; want %q, true", k, ok, InteractiveTUI)
	}
}

func TestFileStore_Forget(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.toml")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	if err := s.Store("top", SemiInteractive); err != nil {
		t.Fatalf("Store: %v", err)
	}

	removed, err := s.Forget("top")
	if err != nil || !removed {
		t.Fatalf("Forget(top) = %v, %v; want true, nil", removed, err)
	}
	if _, ok := s.Lookup("top"); ok {
		t.Error("Lookup(top) found entry after Forget")
	}

	removed, err = s.Forget("top")
	if err != nil || removed {
		t.Errorf("second Forget(top) = %v, %v; want false, nil", removed, err)
	}
}

func TestFileStore_RejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.toml")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}

	if err := s.Store("", Simple); err == nil {
		t.Error("Store with empty signature succeeded")
	}
	if err := s.Store("ls", Kind("weird")); err == nil {
		t.Error("Store with invalid category succeeded")
	}
}

func TestOpenFileStore_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.toml")
	content := "[commands]\nls = \"banana\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFileStore(path); err == nil {
		t.Error("OpenFileStore accepted unknown category")
	}
}

func TestFileStore_ListSorted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "commands.toml")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	for _, sig := range []string{"vim", "ls", "top"} {
		if err := s.Store(sig, Simple); err != nil {
			t.Fatalf("Store(%s): %v", sig, err)
		}
	}
	list := s.List()
	if len(list) != 3 {
		t.Fatalf("List() len = %d, want 3", len(list))
	}
	for i, want := range []string{"ls", "top", "vim"} {
		if list[i].Signature != want {
			t.Errorf("List()[%d] = %q, want %q", i, list[i].Signature, want)
		}
	}
}
