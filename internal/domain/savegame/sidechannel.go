package savegame

import "gamesave/internal/domain/archive"

// MapEntries is the number of u32 entries in the side-channel map blob.
const MapEntries = 200

// SideChannel reads and writes the fixed-size auxiliary table stored next
// to the payload. It is independent of the variable tree's schema.
type SideChannel interface {
	LoadSideChannel(r *archive.Reader) error
	SaveSideChannel(w *archive.Writer) error
}

// MapTable is the world map visit table kept in the side channel.
type MapTable [MapEntries]uint32

func (m *MapTable) LoadSideChannel(r *archive.Reader) error {
	for i := range m {
		m[i] = r.ReadUint32()
	}
	return r.Err()
}

func (m *MapTable) SaveSideChannel(w *archive.Writer) error {
	for _, v := range m {
		w.WriteUint32(v)
	}
	return nil
}
