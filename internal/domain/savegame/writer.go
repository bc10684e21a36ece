package savegame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gamesave/internal/domain/archive"
	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/inventory"
	"gamesave/internal/domain/scene"
)

// DefaultMagic is stored in the bulk header of saves written here.
const DefaultMagic = "FullPipe Savegame"

// State is everything a save captures.
type State struct {
	// Vars is the subtree written as the archive root, normally OBJSTATES.
	Vars          *gamevar.Var
	Inventory     *inventory.Inventory
	Scenes        *scene.Table
	SideChannel   SideChannel
	UpdateCounter uint32
	Magic         string
	Metadata      Metadata
}

// Encode builds the archive payload: variable tree, partial inventory and
// scene snapshot arrays, in that order. The result is not obfuscated.
func Encode(reg *archive.Registry, st State) ([]byte, error) {
	w := archive.NewWriter(reg)
	if err := gamevar.Encode(w, st.Vars); err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	inv := st.Inventory
	if inv == nil {
		inv = inventory.New()
	}
	inv.SavePartial(w)
	scenes := st.Scenes
	if scenes == nil {
		scenes = scene.NewTable(0, nil)
	}
	scenes.SaveAll(w)
	return w.Bytes(), nil
}

// Write produces a complete save file: bulk header, obfuscated payload,
// side-channel map, listing metadata and the trailing metadata offset.
func Write(out io.Writer, reg *archive.Registry, st State) error {
	payload, err := Encode(reg, st)
	if err != nil {
		return err
	}
	archive.Obfuscate(payload)

	h := Header{
		Version:       BulkVersion,
		UpdateCounter: st.UpdateCounter,
		EncSize:       uint32(len(payload)),
	}
	magic := st.Magic
	if magic == "" {
		magic = DefaultMagic
	}
	copy(h.Magic[:], magic)

	mw := archive.NewWriter(nil)
	if st.SideChannel != nil {
		if err := st.SideChannel.SaveSideChannel(mw); err != nil {
			return fmt.Errorf("side channel: %w", err)
		}
	}
	if mw.Len() > MapSize {
		return fmt.Errorf("side channel wrote %d bytes, limit %d", mw.Len(), MapSize)
	}
	mapBlob := make([]byte, MapSize)
	copy(mapBlob, mw.Bytes())

	var buf bytes.Buffer
	if err := writeHeader(&buf, h); err != nil {
		return err
	}
	buf.Write(payload)
	buf.Write(mapBlob)

	offset := uint32(buf.Len())
	meta := st.Metadata
	if meta.Version == 0 {
		meta.Version = MetadataVersion
	}
	if err := writeMetadata(&buf, meta); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, offset); err != nil {
		return err
	}

	_, err = out.Write(buf.Bytes())
	return err
}
