package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Set(KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyToken, "tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok := reopened.Get(KeyTheme); !ok || v != "dark" {
		t.Errorf("theme = %q, %v; want dark", v, ok)
	}
	if v, ok := reopened.Get(KeyToken); !ok || v != "tok-1" {
		t.Errorf("token = %q, %v; want tok-1", v, ok)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, ok := s.Get(KeyToken); ok {
		t.Error("fresh store should be empty")
	}
	// First write creates the parent directory.
	if err := s.Set(KeySidebar, "collapsed"); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path, nil); err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}

func TestFileStoreDelete(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("c", "3")

	if err := s.Delete("a", "b", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, ok := s.Get(k); ok {
			t.Errorf("%s still present after delete", k)
		}
	}
	if v, _ := s.Get("c"); v != "3" {
		t.Errorf("c = %q, want 3", v)
	}
	// Deleting nothing is not an error.
	if err := s.Delete("missing"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileStoreSubscribe(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	id, ch := s.Subscribe(4)

	s.Set(KeyToken, "abc")
	s.Delete(KeyToken)

	want := []string{EventSet, EventDelete}
	for _, typ := range want {
		select {
		case e := <-ch:
			if e.Type != typ {
				t.Errorf("event type = %q, want %q", e.Type, typ)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", typ)
		}
	}

	s.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestFileStoreSlowSubscriberDoesNotBlock(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	_, ch := s.Subscribe(1)
	for i := 0; i < 5; i++ {
		if err := s.Set("k", "v"); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if len(ch) != 1 {
		t.Errorf("buffered events = %d, want 1", len(ch))
	}
	s.Close()
}

func TestSQLiteStoreSubscribe(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	_, ch := s.Subscribe(4)

	sess := NewSession(s)
	if err := sess.SetCredential("tok", nil); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	if err := sess.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	var got []Event
	for len(got) < 3 {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %+v", got)
		}
	}
	// SetCredential without a user deletes it, then sets the token.
	if got[0].Type != EventDelete || got[1].Type != EventSet || got[1].Key != KeyToken {
		t.Errorf("events = %+v", got)
	}
	if last := got[2]; last.Type != EventDelete || len(last.Keys) != 2 || last.Keys[0] != KeyToken {
		t.Errorf("clear event = %+v, want delete of token and user", last)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}

	if err := s.Set(KeyToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyToken, "tok-2"); err != nil {
		t.Fatalf("Set (replace): %v", err)
	}
	if err := s.Set(KeyTheme, "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := s.Get(KeyToken); !ok || v != "tok-2" {
		t.Errorf("token = %q, %v; want tok-2", v, ok)
	}
	if err := s.Delete(KeyToken, KeyUser); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(KeyToken); ok {
		t.Error("token should be gone")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if v, ok := reopened.Get(KeyTheme); !ok || v != "light" {
		t.Errorf("theme = %q, %v; want light", v, ok)
	}
}

func TestSessionClearKeepsPreferences(t *testing.T) {
	for _, driver := range []string{"json", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			store, err := Open(driver, filepath.Join(t.TempDir(), "state"), nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer store.Close()

			sess := NewSession(store)
			if _, ok := sess.Token(); ok {
				t.Fatal("new session should have no token")
			}

			store.Set(KeyTheme, "dark")
			store.Set(KeySidebar, "collapsed")
			if err := sess.SetCredential("jwt", &User{ID: 7, Username: "alice"}); err != nil {
				t.Fatalf("SetCredential: %v", err)
			}
			if tok, ok := sess.Token(); !ok || tok != "jwt" {
				t.Errorf("Token() = %q, %v", tok, ok)
			}
			if u, ok := sess.User(); !ok || u.Username != "alice" || u.ID != 7 {
				t.Errorf("User() = %+v, %v", u, ok)
			}

			if err := sess.Clear(); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok := sess.Token(); ok {
				t.Error("token should be cleared")
			}
			if _, ok := sess.User(); ok {
				t.Error("user should be cleared")
			}
			if v, _ := store.Get(KeyTheme); v != "dark" {
				t.Errorf("theme = %q, want dark", v)
			}
			if v, _ := store.Get(KeySidebar); v != "collapsed" {
				t.Errorf("sidebar = %q, want collapsed", v)
			}
		})
	}
}

func TestSessionEmptyTokenIsNoToken(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	store.Set(KeyToken, "")
	if _, ok := NewSession(store).Token(); ok {
		t.Error("empty token should report absent")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("redis", "x", nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
