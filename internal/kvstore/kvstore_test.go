package kvstore

import (
	"bytes"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
)

// engines opens one store per engine so every behavior test runs against
// both backends
func engines(t *testing.T) map[string]Store {
	t.Helper()
	memory := NewMemory()
	sqlite, err := OpenSQLite("")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		_ = memory.Close()
		_ = sqlite.Close()
	})
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestInsertAndFind(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			value := []byte("hello")
			if err := store.Insert("k1", value); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}

			got, err := store.Find("k1")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if !bytes.Equal(got, value) {
				t.Errorf("Find() = %q, want %q", got, value)
			}
		})
	}
}

func TestInsertDuplicate(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Insert("k1", []byte("a")); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			err := store.Insert("k1", []byte("b"))
			if !errors.Is(err, ErrDuplicateKey) {
				t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
			}

			// Original value survives the rejected insert
			got, err := store.Find("k1")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if string(got) != "a" {
				t.Errorf("Find() = %q, want %q", got, "a")
			}
		})
	}
}

func TestFindMissing(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Find("ghost")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Find() error = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Insert("k1", []byte("old")); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if err := store.Update("k1", []byte("new")); err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			got, err := store.Find("k1")
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if string(got) != "new" {
				t.Errorf("Find() = %q, want %q", got, "new")
			}
		})
	}
}

func TestUpdateMissing(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Update("ghost", []byte("x"))
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Update() error = %v, want ErrKeyNotFound", err)
			}
		})
	}
}

func TestLen(t *testing.T) {
	for name, store := range engines(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := store.Insert(Key(0, i), []byte("v")); err != nil {
					t.Fatalf("Insert(%d) error = %v", i, err)
				}
			}
			n, err := store.Len()
			if err != nil {
				t.Fatalf("Len() error = %v", err)
			}
			if n != 5 {
				t.Errorf("Len() = %d, want 5", n)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := Open("memory", "")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*memoryStore); !ok {
			t.Errorf("Open(memory) returned %T", store)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := Open("sqlite", "")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()
		if _, ok := store.(*sqliteStore); !ok {
			t.Errorf("Open(sqlite) returned %T", store)
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := Open("postgres", "")
		if err == nil {
			t.Fatal("Open() should fail for an unknown engine")
		}
	})
}

func TestSQLiteFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := store.Insert("k1", []byte("persisted")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Find("k1")
	if err != nil {
		t.Fatalf("Find() after reopen error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Find() = %q, want %q", got, "persisted")
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		worker int
		id     int
		want   string
	}{
		{0, 0, "T00_K00000000"},
		{3, 42, "T03_K00000042"},
		{17, 12345678, "T17_K12345678"},
	}

	for _, tt := range tests {
		if got := Key(tt.worker, tt.id); got != tt.want {
			t.Errorf("Key(%d, %d) = %q, want %q", tt.worker, tt.id, got, tt.want)
		}
	}
}

func TestValue(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	value := Value(r, 256)

	if len(value) != 256 {
		t.Fatalf("len(Value()) = %d, want 256", len(value))
	}
	for i, b := range value {
		if b < 'A' || b > 'Z' {
			t.Fatalf("Value()[%d] = %q, want A..Z", i, b)
		}
	}

	// Same seed, same bytes
	again := Value(rand.New(rand.NewSource(1)), 256)
	if !bytes.Equal(value, again) {
		t.Error("Value() should be deterministic for a fixed seed")
	}
}
