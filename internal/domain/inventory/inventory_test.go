package inventory

import (
	"errors"
	"testing"

	"gamesave/internal/domain/archive"
	errs "gamesave/internal/errors"
)

func TestPartialRoundTrip(t *testing.T) {
	src := New(Item{ID: 2, Count: 1}, Item{ID: 7, Count: 3})
	w := archive.NewWriter(nil)
	src.SavePartial(w)

	dst := New(Item{ID: 99, Count: 1})
	if err := dst.LoadPartial(archive.NewReader(w.Bytes(), nil, nil)); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := dst.Items()
	if len(got) != 2 || got[0] != (Item{ID: 2, Count: 1}) || got[1] != (Item{ID: 7, Count: 3}) {
		t.Fatalf("unexpected items %+v", got)
	}
	if dst.Count(99) != 0 {
		t.Fatalf("expected previous items dropped")
	}
}

func TestLoadPartialTruncated(t *testing.T) {
	w := archive.NewWriter(nil)
	w.WriteUint32(3)
	w.WriteUint16(1)

	inv := New(Item{ID: 5, Count: 1})
	err := inv.LoadPartial(archive.NewReader(w.Bytes(), nil, nil))
	if !errors.Is(err, errs.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if inv.Count(5) != 1 {
		t.Fatalf("expected inventory untouched on failure")
	}
}

func TestAdd(t *testing.T) {
	inv := New()
	inv.Add(4, 1)
	inv.Add(4, 2)
	inv.Add(9, 1)
	if inv.Count(4) != 3 || inv.Count(9) != 1 || len(inv.Items()) != 2 {
		t.Fatalf("unexpected items %+v", inv.Items())
	}
}
