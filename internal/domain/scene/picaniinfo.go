package scene

import "gamesave/internal/domain/archive"

// PicAniInfoSize is the encoded size of one PicAniInfo record.
const PicAniInfoSize = 44

// PicAniInfo is the animation pose of one scene object captured at save
// time. Fields with a Reserved prefix have no known meaning and are kept
// so records survive a load/save cycle unchanged.
type PicAniInfo struct {
	Type                  uint32 `json:"type"`
	ObjectID              uint16 `json:"object_id"`
	Reserved6             uint16 `json:"reserved_6"`
	Reserved8             uint32 `json:"reserved_8"`
	SceneID               uint16 `json:"scene_id"`
	ReservedE             uint16 `json:"reserved_e"`
	OX                    int32  `json:"ox"`
	OY                    int32  `json:"oy"`
	Priority              uint32 `json:"priority"`
	StaticsID             uint16 `json:"statics_id"`
	MovementID            uint16 `json:"movement_id"`
	DynamicPhaseIndex     uint16 `json:"dynamic_phase_index"`
	Flags                 uint16 `json:"flags"`
	Reserved24            uint32 `json:"reserved_24"`
	SomeDynamicPhaseIndex uint32 `json:"some_dynamic_phase_index"`
}

func (p *PicAniInfo) Load(r *archive.Reader) error {
	p.Type = r.ReadUint32()
	p.ObjectID = r.ReadUint16()
	p.Reserved6 = r.ReadUint16()
	p.Reserved8 = r.ReadUint32()
	p.SceneID = r.ReadUint16()
	p.ReservedE = r.ReadUint16()
	p.OX = r.ReadInt32()
	p.OY = r.ReadInt32()
	p.Priority = r.ReadUint32()
	p.StaticsID = r.ReadUint16()
	p.MovementID = r.ReadUint16()
	p.DynamicPhaseIndex = r.ReadUint16()
	p.Flags = r.ReadUint16()
	p.Reserved24 = r.ReadUint32()
	p.SomeDynamicPhaseIndex = r.ReadUint32()
	return r.Err()
}

func (p *PicAniInfo) Save(w *archive.Writer) {
	w.WriteUint32(p.Type)
	w.WriteUint16(p.ObjectID)
	w.WriteUint16(p.Reserved6)
	w.WriteUint32(p.Reserved8)
	w.WriteUint16(p.SceneID)
	w.WriteUint16(p.ReservedE)
	w.WriteInt32(p.OX)
	w.WriteInt32(p.OY)
	w.WriteUint32(p.Priority)
	w.WriteUint16(p.StaticsID)
	w.WriteUint16(p.MovementID)
	w.WriteUint16(p.DynamicPhaseIndex)
	w.WriteUint16(p.Flags)
	w.WriteUint32(p.Reserved24)
	w.WriteUint32(p.SomeDynamicPhaseIndex)
}
