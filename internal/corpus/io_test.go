package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jimezsa/jobminer/internal/models"
)

func TestReadWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")

	snapshot := Snapshot{
		Keyword:     "HR Manager",
		Location:    "New York",
		CollectedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Links:       []models.JobLink{"/rc/clk?jk=1", "/rc/clk?jk=2"},
		Descriptions: []models.JobDescription{
			{Link: "/rc/clk?jk=1", URL: "https://www.indeed.com/rc/clk?jk=1", Text: "Manage payroll"},
		},
	}
	if err := WriteSnapshot(path, snapshot); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(got, snapshot) {
		t.Fatalf("ReadSnapshot() = %+v, want %+v", got, snapshot)
	}
	if texts := got.Texts(); !reflect.DeepEqual(texts, []string{"Manage payroll"}) {
		t.Fatalf("Texts() = %v", texts)
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadSnapshot(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ReadSnapshot() error = %v, want ErrNotExist", err)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshot(empty); err == nil {
		t.Fatalf("expected error for empty snapshot")
	}

	if _, err := ReadSnapshot(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestWriteSnapshotEmptyCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := WriteSnapshot(path, Snapshot{Keyword: "x"}); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if got.Links == nil || got.Descriptions == nil || len(got.Links) != 0 {
		t.Fatalf("expected empty, non-nil collections: %+v", got)
	}
}
