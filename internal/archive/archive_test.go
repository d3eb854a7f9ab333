package archive

import (
	"path/filepath"
	"testing"

	"github.com/thereceipt/titlecard-engine/internal/batch"
)

func TestOpen_Missing(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "archive.json"), nil)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	if len(idx.All()) != 0 {
		t.Errorf("Expected empty archive, got %d entries", len(idx.All()))
	}
}

func TestRecord_StableID(t *testing.T) {
	idx, _ := Open(filepath.Join(t.TempDir(), "archive.json"), nil)

	res := batch.Result{ID: "ep1", Variant: "standard", Output: "/cards/s01e01.jpg", Group: "Standard Style", Status: batch.StatusRendered}
	id1 := idx.Record(res)
	if id1 == "" {
		t.Fatal("Expected non-empty archive ID")
	}

	res.Group = "Standard Style - Custom Font"
	id2 := idx.Record(res)
	if id1 != id2 {
		t.Errorf("Expected same ID for the same output: %s != %s", id1, id2)
	}

	entry := idx.Get(id1)
	if entry == nil {
		t.Fatal("Expected entry")
	}
	if entry.Renders != 2 || entry.Group != "Standard Style - Custom Font" {
		t.Errorf("Expected refreshed entry, got %+v", entry)
	}
}

func TestRecord_DistinctOutputs(t *testing.T) {
	idx, _ := Open(filepath.Join(t.TempDir(), "archive.json"), nil)

	a := idx.Record(batch.Result{Variant: "standard", Output: "/cards/a.jpg", Group: "Standard Style"})
	b := idx.Record(batch.Result{Variant: "standard", Output: "/cards/b.jpg", Group: "Standard Style"})
	c := idx.Record(batch.Result{Variant: "fade", Output: "/cards/a.jpg", Group: "Fade Style"})

	if a == b || a == c {
		t.Errorf("Expected distinct IDs, got %s %s %s", a, b, c)
	}
	groups := idx.Groups()
	if groups["Standard Style"] != 2 || groups["Fade Style"] != 1 {
		t.Errorf("Unexpected groups %v", groups)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")

	idx1, _ := Open(path, nil)
	id := idx1.Record(batch.Result{Variant: "frame", Output: "/cards/f.jpg", Group: "Frame Style"})

	idx2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Failed to reopen archive: %v", err)
	}
	entry := idx2.Get(id)
	if entry == nil || entry.Group != "Frame Style" {
		t.Errorf("Expected persisted entry, got %+v", entry)
	}
}

func TestRemove(t *testing.T) {
	idx, _ := Open(filepath.Join(t.TempDir(), "archive.json"), nil)
	id := idx.Record(batch.Result{Variant: "standard", Output: "/cards/x.jpg"})

	if !idx.Remove(id) {
		t.Error("Expected removal to succeed")
	}
	if idx.Remove(id) {
		t.Error("Expected second removal to fail")
	}
	if idx.Get(id) != nil {
		t.Error("Expected entry to be gone")
	}
}

func TestObserver_RecordsRenderedOnly(t *testing.T) {
	idx, _ := Open(filepath.Join(t.TempDir(), "archive.json"), nil)
	var obs batch.Observer = idx

	obs.OnStart(3)
	obs.OnCardDone(1, 3, batch.Result{Variant: "standard", Output: "/cards/1.jpg", Status: batch.StatusRendered})
	obs.OnCardDone(2, 3, batch.Result{Variant: "standard", Output: "/cards/2.jpg", Status: batch.StatusFailed})
	obs.OnCardDone(3, 3, batch.Result{Variant: "standard", Output: "/cards/3.jpg", Status: batch.StatusSkipped})

	if n := len(idx.All()); n != 1 {
		t.Errorf("Expected 1 archived card, got %d", n)
	}
}
