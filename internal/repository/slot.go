package repo

import (
	"bytes"
	"fmt"
	"strings"

	errs "gamesave/internal/errors"
)

// SlotInfo is what a store knows about a slot without opening it.
type SlotInfo struct {
	Slot string `json:"slot" bson:"slot"`
	Size int64  `json:"size" bson:"size"`
}

type memSlot struct {
	*bytes.Reader
}

func (memSlot) Close() error { return nil }

func newMemSlot(data []byte) memSlot {
	return memSlot{Reader: bytes.NewReader(data)}
}

// checkSlotName keeps slot names usable as file names and key suffixes.
func checkSlotName(slot string) error {
	if slot == "" || slot == "." || slot == ".." || len(slot) > 128 ||
		strings.ContainsAny(slot, "/\\:*?\"<>|\x00") {
		return fmt.Errorf("slot %q: %w", slot, errs.ErrBadSlotName)
	}
	return nil
}
