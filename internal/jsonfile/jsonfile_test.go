package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "doc.json")

	in := map[string]int{"one": 1, "two": 2}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc.json" {
		t.Errorf("temp file left behind: %v", entries)
	}

	var out map[string]int
	if err := Read(path, &out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out["one"] != 1 || out["two"] != 2 {
		t.Errorf("unexpected document: %v", out)
	}
}

func TestConcurrentWritesLeaveValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := Write(path, []int{i, i, i}); err != nil {
				t.Errorf("Write: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var out []int
	if err := Read(path, &out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != 3 || out[0] != out[1] || out[1] != out[2] {
		t.Errorf("mixed document: %v", out)
	}
}

func TestReadMissing(t *testing.T) {
	var out []string
	err := Read(filepath.Join(t.TempDir(), "missing.json"), &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	os.WriteFile(path, []byte("[1, 2"), 0644)

	var out []int
	if err := Read(path, &out); err == nil {
		t.Error("expected decode error")
	}
}
