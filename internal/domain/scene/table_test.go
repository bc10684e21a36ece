package scene

import (
	"errors"
	"testing"

	"gamesave/internal/domain/archive"
	errs "gamesave/internal/errors"
)

func infos(n int, base uint16) []PicAniInfo {
	out := make([]PicAniInfo, n)
	for i := range out {
		out[i] = PicAniInfo{
			Type:              uint32(i),
			ObjectID:          base + uint16(i),
			SceneID:           1601,
			OX:                int32(-10 * i),
			OY:                int32(20 * i),
			Priority:          5,
			StaticsID:         100,
			MovementID:        200,
			DynamicPhaseIndex: uint16(i),
			Flags:             0x4,
		}
	}
	return out
}

func encodeTable(t *testing.T, tbl *Table) []byte {
	t.Helper()
	w := archive.NewWriter(nil)
	tbl.SaveAll(w)
	return w.Bytes()
}

func TestPicAniInfoSize(t *testing.T) {
	w := archive.NewWriter(nil)
	p := PicAniInfo{}
	p.Save(w)
	if w.Len() != PicAniInfoSize {
		t.Fatalf("expected %d bytes, got %d", PicAniInfoSize, w.Len())
	}
}

func TestLoadAllRoundTrip(t *testing.T) {
	src := NewTable(4, nil)
	src.SetSlot(0, infos(1, 10))
	src.SetSlot(2, infos(5, 300))

	dst := NewTable(4, nil)
	if err := dst.LoadAll(archive.NewReader(encodeTable(t, src), nil, nil)); err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 0; i < 4; i++ {
		want, got := src.Slot(i), dst.Slot(i)
		if len(want) != len(got) {
			t.Fatalf("slot %d: expected %d records, got %d", i, len(want), len(got))
		}
		for j := range want {
			if want[j] != got[j] {
				t.Fatalf("slot %d record %d: expected %+v, got %+v", i, j, want[j], got[j])
			}
		}
	}
}

func TestLoadAllReplacesSlot(t *testing.T) {
	tbl := NewTable(3, nil)

	first := NewTable(3, nil)
	first.SetSlot(2, infos(5, 1))
	if err := tbl.LoadAll(archive.NewReader(encodeTable(t, first), nil, nil)); err != nil {
		t.Fatalf("first load: %v", err)
	}
	old := tbl.Slot(2)
	if len(old) != 5 {
		t.Fatalf("expected 5 records, got %d", len(old))
	}

	second := NewTable(3, nil)
	second.SetSlot(2, infos(2, 50))
	if err := tbl.LoadAll(archive.NewReader(encodeTable(t, second), nil, nil)); err != nil {
		t.Fatalf("second load: %v", err)
	}

	got := tbl.Slot(2)
	if len(got) != 2 || cap(got) != 2 {
		t.Fatalf("expected exactly 2 records, got len %d cap %d", len(got), cap(got))
	}
	if got[0].ObjectID != 50 {
		t.Fatalf("expected fresh records, got object %d", got[0].ObjectID)
	}
	if old[0].ObjectID != 1 {
		t.Fatalf("expected previous array not reused")
	}
}

func TestLoadAllGrowsTable(t *testing.T) {
	src := NewTable(6, nil)
	src.SetSlot(5, infos(1, 7))

	dst := NewTable(2, nil)
	if err := dst.LoadAll(archive.NewReader(encodeTable(t, src), nil, nil)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if dst.Len() != 6 || len(dst.Slot(5)) != 1 {
		t.Fatalf("expected table grown to 6 with slot 5 filled")
	}
}

func TestLoadAllRejectsOversizedCounts(t *testing.T) {
	hugeSlots := archive.NewWriter(nil)
	hugeSlots.WriteUint32(1 << 30)

	hugeRecords := archive.NewWriter(nil)
	hugeRecords.WriteUint32(1)
	hugeRecords.WriteUint32(1 << 20)

	for name, data := range map[string][]byte{
		"slots":   hugeSlots.Bytes(),
		"records": hugeRecords.Bytes(),
		"empty":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			err := NewTable(1, nil).LoadAll(archive.NewReader(data, nil, nil))
			if !errors.Is(err, errs.ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
		})
	}
}
