package inventory

import (
	"fmt"

	"gamesave/internal/domain/archive"
	errs "gamesave/internal/errors"
)

const itemSize = 4

type Item struct {
	ID    uint16 `json:"id"`
	Count uint16 `json:"count"`
}

// Inventory is the carried-item list stored in saves. Only item ids and
// counts are persisted; everything else about an item comes from game data.
type Inventory struct {
	items []Item
}

func New(items ...Item) *Inventory {
	return &Inventory{items: append([]Item(nil), items...)}
}

func (inv *Inventory) Items() []Item {
	return append([]Item(nil), inv.items...)
}

// Replace swaps in a copy of src's items.
func (inv *Inventory) Replace(src *Inventory) {
	inv.items = append([]Item(nil), src.items...)
}

// Count returns how many of id are carried.
func (inv *Inventory) Count(id uint16) int {
	total := 0
	for _, it := range inv.items {
		if it.ID == id {
			total += int(it.Count)
		}
	}
	return total
}

// Add increases the count of id, appending a new entry if needed.
func (inv *Inventory) Add(id uint16, count uint16) {
	for i := range inv.items {
		if inv.items[i].ID == id {
			inv.items[i].Count += count
			return
		}
	}
	inv.items = append(inv.items, Item{ID: id, Count: count})
}

// LoadPartial replaces the item list with the one stored in r.
func (inv *Inventory) LoadPartial(r *archive.Reader) error {
	n := int(r.ReadUint32())
	if err := r.Err(); err != nil {
		return err
	}
	if n > r.Remaining()/itemSize {
		return fmt.Errorf("%d inventory items with %d bytes left: %w", n, r.Remaining(), errs.ErrTruncated)
	}

	items := make([]Item, n)
	for i := range items {
		items[i].ID = r.ReadUint16()
		items[i].Count = r.ReadUint16()
	}
	if err := r.Err(); err != nil {
		return err
	}
	inv.items = items
	return nil
}

func (inv *Inventory) SavePartial(w *archive.Writer) {
	w.WriteUint32(uint32(len(inv.items)))
	for _, it := range inv.items {
		w.WriteUint16(it.ID)
		w.WriteUint16(it.Count)
	}
}
