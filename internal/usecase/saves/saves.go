package saves

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamesave/internal/domain/archive"
	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/savegame"
	"gamesave/internal/engine"
	errs "gamesave/internal/errors"
	repo "gamesave/internal/repository"
	"gamesave/internal/usecase/loader"
)

type SlotStore interface {
	loader.SlotOpener
	Write(ctx context.Context, slot string, data []byte) error
	List(ctx context.Context) ([]repo.SlotInfo, error)
	Delete(ctx context.Context, slot string) error
}

// SlotSummary is the listing entry of a slot. Valid is false when the
// trailing metadata block could not be read; the dummy values are reported
// in that case.
type SlotSummary struct {
	Slot       string    `json:"slot"`
	Size       int64     `json:"size"`
	Valid      bool      `json:"valid"`
	SaveName   string    `json:"save_name"`
	SavedAt    time.Time `json:"saved_at"`
	PlaytimeMs int64     `json:"playtime_ms"`
	HasThumb   bool      `json:"has_thumbnail"`
}

// VarNode is the JSON view of a variable subtree.
type VarNode struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Value     any        `json:"value"`
	SubVars   []*VarNode `json:"sub_vars,omitempty"`
	Secondary []*VarNode `json:"secondary,omitempty"`
}

func NewVarNode(v *gamevar.Var) *VarNode {
	n := &VarNode{Name: v.Name(), Type: v.Type().String(), Value: v.Value()}
	for _, sv := range v.SubVars() {
		n.SubVars = append(n.SubVars, NewVarNode(sv))
	}
	for _, sv := range v.Secondary() {
		n.Secondary = append(n.Secondary, NewVarNode(sv))
	}
	return n
}

// Inspection is a decoded save, detached from the live session.
type Inspection struct {
	Slot          string   `json:"slot"`
	Magic         string   `json:"magic"`
	UpdateCounter uint32   `json:"update_counter"`
	Vars          *VarNode `json:"vars"`
	Items         int      `json:"inventory_items"`
	SceneSlots    int      `json:"scene_slots"`
	Snapshots     int      `json:"snapshots"`
}

// SaveUseCase serves one game session backed by a slot store. Loads and
// saves are serialized on the session.
type SaveUseCase struct {
	store   SlotStore
	loader  *loader.Loader
	version uint32
	log     *zap.SugaredLogger

	mu      sync.Mutex
	session *engine.Session
}

func NewSaveUseCase(store SlotStore, session *engine.Session, version uint32, staged bool, log *zap.SugaredLogger) *SaveUseCase {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if version == 0 {
		version = savegame.BulkVersion
	}
	return &SaveUseCase{
		store:   store,
		loader:  loader.NewLoader(store, version, staged, log),
		version: version,
		log:     log,
		session: session,
	}
}

func (uc *SaveUseCase) ListSlots(ctx context.Context) ([]SlotSummary, error) {
	slots, err := uc.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	out := make([]SlotSummary, 0, len(slots))
	for _, s := range slots {
		sum, err := uc.Describe(ctx, s.Slot)
		if err != nil {
			uc.log.Warnw("Skipping unreadable slot", "slot", s.Slot, zap.Error(err))
			continue
		}
		sum.Size = s.Size
		out = append(out, sum)
	}
	return out, nil
}

// Describe reads the listing metadata of a slot.
func (uc *SaveUseCase) Describe(ctx context.Context, slot string) (SlotSummary, error) {
	_, sum, err := uc.metadata(ctx, slot)
	return sum, err
}

// Thumbnail returns the preview image of a slot, nil when it has none.
func (uc *SaveUseCase) Thumbnail(ctx context.Context, slot string) (image.Image, error) {
	meta, _, err := uc.metadata(ctx, slot)
	if err != nil {
		return nil, err
	}
	return meta.Thumbnail, nil
}

func (uc *SaveUseCase) metadata(ctx context.Context, slot string) (savegame.Metadata, SlotSummary, error) {
	f, err := uc.store.Open(ctx, slot)
	if err != nil {
		return savegame.Metadata{}, SlotSummary{}, err
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return savegame.Metadata{}, SlotSummary{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return savegame.Metadata{}, SlotSummary{}, err
	}

	ok, meta := savegame.Validate(f)
	if !ok {
		uc.log.Debugw("Slot has no readable metadata", "slot", slot)
	}
	return meta, SlotSummary{
		Slot:       slot,
		Size:       size,
		Valid:      ok,
		SaveName:   meta.SaveName,
		SavedAt:    meta.SavedAt(),
		PlaytimeMs: meta.Playtime.Milliseconds(),
		HasThumb:   meta.Thumbnail != nil,
	}, nil
}

// Inspect decodes a slot without touching the session.
func (uc *SaveUseCase) Inspect(ctx context.Context, slot string) (*Inspection, error) {
	f, err := uc.store.Open(ctx, slot)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bulk, err := savegame.ReadBulk(f, uc.version)
	if err != nil {
		return nil, err
	}
	archive.Deobfuscate(bulk.Payload)
	c, err := savegame.DecodePayload(savegame.Registry(), bulk.Payload, uc.log)
	if err != nil {
		return nil, err
	}

	snapshots := 0
	for i := 0; i < c.Scenes.Len(); i++ {
		snapshots += len(c.Scenes.Slot(i))
	}
	return &Inspection{
		Slot:          slot,
		Magic:         bulk.Header.MagicString(),
		UpdateCounter: bulk.Header.UpdateCounter,
		Vars:          NewVarNode(c.Vars),
		Items:         len(c.Inventory.Items()),
		SceneSlots:    c.Scenes.Len(),
		Snapshots:     snapshots,
	}, nil
}

// Save writes the session into slot. The save name follows the
// "YYYY-MM-DD HH:MM" convention of the in-game dialog.
func (uc *SaveUseCase) Save(ctx context.Context, slot string, entrance int32, playtime time.Duration, thumb image.Image) (SlotSummary, error) {
	now := time.Now()
	meta := savegame.Metadata{
		Version:   savegame.MetadataVersion,
		Date:      savegame.PackDate(now.Year(), int(now.Month()), now.Day()),
		Time:      savegame.PackTime(now.Hour(), now.Minute()),
		Playtime:  playtime.Truncate(time.Second),
		SaveName:  now.Format("2006-01-02 15:04"),
		Thumbnail: thumb,
	}

	if err := uc.save(ctx, slot, entrance, meta); err != nil {
		return SlotSummary{}, err
	}
	return uc.Describe(ctx, slot)
}

// save encodes and stores the session. The update counter only moves once
// the slot has been written.
func (uc *SaveUseCase) save(ctx context.Context, slot string, entrance int32, meta savegame.Metadata) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	st := uc.session.SaveState(entrance, meta)
	var buf bytes.Buffer
	if err := savegame.Write(&buf, savegame.Registry(), st); err != nil {
		uc.log.Errorw("Failed to encode save", "slot", slot, zap.Error(err))
		return fmt.Errorf("encode save: %w", err)
	}
	if err := uc.store.Write(ctx, slot, buf.Bytes()); err != nil {
		uc.log.Errorw("Failed to store save", "slot", slot, zap.Error(err))
		return err
	}
	uc.session.Saved(st)
	uc.log.Infow("Game saved", "slot", slot, "bytes", buf.Len(), "update_counter", st.UpdateCounter)
	return nil
}

func (uc *SaveUseCase) Delete(ctx context.Context, slot string) error {
	return uc.store.Delete(ctx, slot)
}

// Load restores slot into the session. preload may be nil, in which case
// the scene switch always proceeds.
func (uc *SaveUseCase) Load(ctx context.Context, slot string, preload loader.PreloadFunc) (*loader.Result, error) {
	return uc.LoadWithID(ctx, uuid.Nil, slot, preload)
}

// LoadWithID is Load with a caller chosen load id, so progress reported
// through preload can be matched with the result.
func (uc *SaveUseCase) LoadWithID(ctx context.Context, id uuid.UUID, slot string, preload loader.PreloadFunc) (*loader.Result, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	lc := uc.session.LoadContext(preload)
	lc.ID = id
	res, err := uc.loader.Load(ctx, lc, slot)
	uc.session.Absorb(lc)

	switch errs.Classify(err) {
	case errs.ClassNone:
	case errs.ClassRecoverable:
		uc.log.Infow("Load stopped", "slot", slot, "state", res.State.String(), zap.Error(err))
	default:
		uc.log.Errorw("Load failed", "slot", slot, "state", res.State.String(), zap.Error(err))
	}
	return res, err
}

// Vars returns a JSON view of the live variable tree.
func (uc *SaveUseCase) Vars() *VarNode {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return NewVarNode(uc.session.Vars)
}

// CurrentScene reports the scene the session's engine has active.
func (uc *SaveUseCase) CurrentScene() (int32, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.session.Engine.CurrentScene()
}

// EnterScene makes sceneID the active scene, unloading the previous one.
func (uc *SaveUseCase) EnterScene(sceneID int32) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	e := uc.session.Engine
	if cur, ok := e.CurrentScene(); ok {
		if err := e.UnloadScene(cur); err != nil {
			return err
		}
	}
	return e.LoadScene(sceneID)
}
