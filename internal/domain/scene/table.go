package scene

import (
	"fmt"

	"go.uber.org/zap"

	"gamesave/internal/domain/archive"
	errs "gamesave/internal/errors"
)

// Table holds the per-scene snapshot arrays, indexed by scene slot.
type Table struct {
	slots [][]PicAniInfo
	log   *zap.SugaredLogger
}

func NewTable(slots int, log *zap.SugaredLogger) *Table {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Table{slots: make([][]PicAniInfo, slots), log: log}
}

func (t *Table) Len() int { return len(t.slots) }

// Slot returns the snapshot array of slot i, nil when out of range.
func (t *Table) Slot(i int) []PicAniInfo {
	if i < 0 || i >= len(t.slots) {
		return nil
	}
	return t.slots[i]
}

// SetSlot replaces slot i with a copy of infos, growing the table as needed.
func (t *Table) SetSlot(i int, infos []PicAniInfo) {
	if i < 0 {
		return
	}
	t.grow(i + 1)
	t.slots[i] = append([]PicAniInfo(nil), infos...)
}

func (t *Table) grow(n int) {
	if n > len(t.slots) {
		t.slots = append(t.slots, make([][]PicAniInfo, n-len(t.slots))...)
	}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := &Table{slots: make([][]PicAniInfo, len(t.slots)), log: t.log}
	for i, s := range t.slots {
		if s != nil {
			c.slots[i] = append([]PicAniInfo(nil), s...)
		}
	}
	return c
}

// Assign makes t hold exactly the slots of src.
func (t *Table) Assign(src *Table) {
	c := src.Clone()
	t.slots = c.slots
}

// LoadAll reads a slot count followed by, per slot, a record count and that
// many records. Each slot read is replaced by a freshly allocated array of
// exactly the read length; slots past the read count are left as they are.
// On error the table may be partially updated.
func (t *Table) LoadAll(r *archive.Reader) error {
	count := int(r.ReadUint32())
	if err := r.Err(); err != nil {
		return err
	}
	// every slot needs at least its own 4 byte record count
	if count > r.Remaining()/4 {
		return fmt.Errorf("%d scene slots with %d bytes left: %w", count, r.Remaining(), errs.ErrTruncated)
	}

	t.log.Debugf("Reading %d infos", count)
	t.grow(count)

	for i := 0; i < count; i++ {
		n := int(r.ReadUint32())
		if err := r.Err(); err != nil {
			return err
		}
		if n > r.Remaining()/PicAniInfoSize {
			return fmt.Errorf("slot %d claims %d records with %d bytes left: %w", i, n, r.Remaining(), errs.ErrTruncated)
		}
		if n > 0 {
			t.log.Debugf("Count %d: %d", i, n)
		}

		infos := make([]PicAniInfo, n)
		for j := range infos {
			if err := infos[j].Load(r); err != nil {
				return err
			}
		}
		t.slots[i] = infos
	}
	return nil
}

// SaveAll writes every slot in the layout LoadAll reads.
func (t *Table) SaveAll(w *archive.Writer) {
	w.WriteUint32(uint32(len(t.slots)))
	for _, infos := range t.slots {
		w.WriteUint32(uint32(len(infos)))
		for i := range infos {
			infos[i].Save(w)
		}
	}
}
