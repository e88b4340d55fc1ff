package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sepsiswatch/platform/pkg/cohort"
)

func TestCohortCSVRoundTrip(t *testing.T) {
	rows := cohort.NewGenerator(cohort.DefaultProfiles()).Generate(200, 42)
	path := filepath.Join(t.TempDir(), "cohort.csv")

	if err := WriteCohortCSV(path, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := ReadCohortCSV(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !reflect.DeepEqual(rows, loaded) {
		t.Fatal("round-tripped cohort differs from original")
	}
}

func TestCohortCSVWritesAreByteIdentical(t *testing.T) {
	rows := cohort.NewGenerator(cohort.DefaultProfiles()).Generate(100, 42)
	dir := t.TempDir()

	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	if err := WriteCohortCSV(first, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteCohortCSV(second, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if string(a) != string(b) {
		t.Fatal("same cohort serialized differently")
	}
}

func TestReadCohortCSVMissingFile(t *testing.T) {
	_, err := ReadCohortCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadCohortCSVRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := ReadCohortCSV(path); err == nil {
		t.Fatal("expected header validation error")
	}
}

func TestWriteAtomicFailureIsArtifactIO(t *testing.T) {
	// A file where the parent directory should be forces MkdirAll to fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := WriteAtomic(filepath.Join(blocker, "nested", "artifact.json"), []byte("{}"))
	if err == nil {
		t.Fatal("expected write failure")
	}
	if !errors.Is(err, ErrArtifactIO) {
		t.Fatalf("error %v does not wrap ErrArtifactIO", err)
	}
}

func TestWriteAtomicLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.json")
	if err := WriteAtomic(path, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "artifact.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
