package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamesave/internal/domain/archive"
	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/inventory"
	"gamesave/internal/domain/savegame"
	"gamesave/internal/domain/scene"
	errs "gamesave/internal/errors"
)

const (
	objStatesVar = "OBJSTATES"
	saveGameVar  = "SAVEGAME"
	sceneVar     = "Scene"
	entranceVar  = "Entrance"
)

// Preload checkpoints. Only PercentStart can cancel the load.
const (
	PercentStart = 0
	PercentHalf  = 50
	PercentDone  = 100
)

// Enter-scene command posted once the saved scene is loaded.
const (
	EnterSceneKind  = 17
	EnterSceneNum   = 62
	EnterSceneFlags = 2
)

// SlotOpener opens a named save slot for reading. A missing slot must be
// reported as errs.ErrSlotNotFound.
type SlotOpener interface {
	Open(ctx context.Context, slot string) (io.ReadSeekCloser, error)
}

// Engine is the part of the running game the loader drives when it
// switches to the saved scene.
type Engine interface {
	CurrentScene() (sceneID int32, ok bool)
	ClearGlobalMessageQueue()
	UnloadScene(sceneID int32) error
	LoadScene(sceneID int32) error
	PostEnterScene(sceneID, entrance int32)
}

// PreloadItem describes the pending scene switch to the preload callback.
type PreloadItem struct {
	PreloadID1 int32 `json:"preload_id1"`
	PreloadID2 int32 `json:"preload_id2"`
	SceneID    int32 `json:"scene_id"`
	Param      int32 `json:"param"`
}

// PreloadFunc is called at 0, 50 and 100 percent of the scene switch.
// Returning false at 0 cancels the switch; later return values are ignored.
type PreloadFunc func(item PreloadItem, percent int) bool

// Context carries the live game state a load writes into and the
// collaborators it calls back.
type Context struct {
	// ID tags the load in logs and in the Result. A zero ID gets a fresh
	// one.
	ID            uuid.UUID
	Vars          *gamevar.Var
	Scenes        *scene.Table
	Inventory     *inventory.Inventory
	SideChannel   savegame.SideChannel
	Engine        Engine
	Preload       PreloadFunc
	UpdateCounter uint32
}

type Result struct {
	ID            uuid.UUID `json:"id"`
	Slot          string    `json:"slot"`
	State         State     `json:"-"`
	Trace         []State   `json:"-"`
	UpdateCounter uint32    `json:"update_counter"`
	SceneID       int32     `json:"scene_id"`
	Entrance      int32     `json:"entrance"`
	Switched      bool      `json:"switched"`

	mutated bool
}

// Mutated reports whether the load wrote anything into the live state:
// the side-channel map, the update counter, the tree, inventory or scene
// arrays. A staged load that stopped before the preload callback accepted
// never has.
func (r *Result) Mutated() bool { return r.mutated }

func (r *Result) advance(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

type Loader struct {
	store    SlotOpener
	registry *archive.Registry
	version  uint32
	staged   bool
	log      *zap.SugaredLogger
}

// NewLoader returns a Loader reading saves of the given bulk version. With
// staged set, the loaded state is merged into scratch copies and committed
// to the live state only after the preload callback accepts the scene
// switch. Without it the live tree is merged before the callback runs, so a
// cancelled switch still leaves the loaded values behind.
func NewLoader(store SlotOpener, version uint32, staged bool, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if version == 0 {
		version = savegame.BulkVersion
	}
	return &Loader{
		store:    store,
		registry: savegame.Registry(),
		version:  version,
		staged:   staged,
		log:      log,
	}
}

// target is the state a load writes into: either the live state itself or
// scratch copies of it.
type target struct {
	objStates *gamevar.Var
	inventory *inventory.Inventory
	scenes    *scene.Table
}

// Load restores slot into lc. The returned Result always reports the last
// stage reached; Result.Mutated tells whether lc was written to. In staged
// mode nothing in lc changes until the preload callback accepts, so any
// earlier failure or a cancelled switch leaves it as it was. In place, the
// side-channel map is applied as soon as the blob is read and the tree is
// merged at StateTreeMerged, and both stay changed on later failures.
func (l *Loader) Load(ctx context.Context, lc *Context, slot string) (*Result, error) {
	res := &Result{ID: uuid.New(), Slot: slot, State: StateIdle}
	if lc == nil || lc.Vars == nil {
		return res, fmt.Errorf("load context without variable tree: %w", errs.ErrInternal)
	}
	if lc.ID != uuid.Nil {
		res.ID = lc.ID
	}
	log := l.log.With("load_id", res.ID.String(), "slot", slot)

	bulk, err := l.readBulk(ctx, slot, res, log)
	if err != nil {
		return res, err
	}

	if !l.staged {
		if err := l.applySideChannel(lc, bulk, res, log); err != nil {
			return res, err
		}
	}

	archive.Deobfuscate(bulk.Payload)
	res.advance(StateDeobfuscated)

	r := archive.NewReader(bulk.Payload, l.registry, log)
	loaded, err := gamevar.Decode(r)
	if err != nil {
		log.Errorw("Failed to decode variable tree", "offset", r.Pos(), zap.Error(err))
		return res, fmt.Errorf("decode variables: %w", err)
	}
	res.advance(StateTreeDeserialized)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	var dst target
	if l.staged {
		dst = l.scratch(lc)
	} else {
		dst, err = l.live(lc, bulk, res, log)
		if err != nil {
			return res, err
		}
	}

	gamevar.Merge(loaded, dst.objStates)
	res.advance(StateTreeMerged)

	if err := l.loadSnapshots(r, dst, log); err != nil {
		return res, err
	}
	res.advance(StateScenesArraysLoaded)

	commit := func() error {
		if !l.staged {
			return nil
		}
		live, err := l.live(lc, bulk, res, log)
		if err != nil {
			return err
		}
		if err := l.applySideChannel(lc, bulk, res, log); err != nil {
			return err
		}
		gamevar.Merge(loaded, live.objStates)
		live.inventory.Replace(dst.inventory)
		live.scenes.Assign(dst.scenes)
		return nil
	}

	// The scene to enter comes from the save itself. A SAVEGAME left in the
	// live tree by an earlier load must not trigger a switch.
	save := loaded.SubVarByName(saveGameVar)
	if save == nil {
		if err := commit(); err != nil {
			return res, err
		}
		log.Infow("Save has no scene to enter")
		res.advance(StateReady)
		return res, nil
	}
	return res, l.switchScene(lc, save, commit, res, log)
}

// live resolves the live targets, creating OBJSTATES and empty containers
// when the session has none yet. It also records the update counter, the
// first write a load makes to the live state.
func (l *Loader) live(lc *Context, bulk *savegame.Bulk, res *Result, log *zap.SugaredLogger) (target, error) {
	objStates := lc.Vars.SubVarByName(objStatesVar)
	if objStates == nil {
		objStates = lc.Vars.AddSubVarAsInt(objStatesVar, 0)
		if objStates == nil {
			log.Warn("No state to save")
			return target{}, errs.ErrNoObjStates
		}
	}
	if lc.Inventory == nil {
		lc.Inventory = inventory.New()
	}
	if lc.Scenes == nil {
		lc.Scenes = scene.NewTable(0, log)
	}
	lc.UpdateCounter = bulk.Header.UpdateCounter
	res.mutated = true
	return target{objStates: objStates, inventory: lc.Inventory, scenes: lc.Scenes}, nil
}

func (l *Loader) scratch(lc *Context) target {
	dst := target{inventory: inventory.New(), scenes: scene.NewTable(0, nil)}
	if live := lc.Vars.SubVarByName(objStatesVar); live != nil {
		dst.objStates = live.Clone()
	} else {
		dst.objStates = gamevar.NewInt(objStatesVar, 0)
	}
	if lc.Scenes != nil {
		dst.scenes = lc.Scenes.Clone()
	}
	return dst
}

func (l *Loader) applySideChannel(lc *Context, bulk *savegame.Bulk, res *Result, log *zap.SugaredLogger) error {
	if lc.SideChannel == nil {
		return nil
	}
	res.mutated = true
	if err := lc.SideChannel.LoadSideChannel(archive.NewReader(bulk.Map, nil, log)); err != nil {
		return fmt.Errorf("side channel: %w", err)
	}
	return nil
}

func (l *Loader) readBulk(ctx context.Context, slot string, res *Result, log *zap.SugaredLogger) (*savegame.Bulk, error) {
	f, err := l.store.Open(ctx, slot)
	if err != nil {
		if errors.Is(err, errs.ErrSlotNotFound) {
			log.Warnf("Cannot open save %s for loading", slot)
		}
		return nil, err
	}
	defer f.Close()

	h, err := savegame.ReadHeader(f, l.version)
	if err != nil {
		log.Warnw("Rejected save header", zap.Error(err))
		return nil, err
	}
	log.Debugf("version: %d magic: %s updateCounter: %d encSize: %d",
		h.Version, h.MagicString(), h.UpdateCounter, h.EncSize)
	res.UpdateCounter = h.UpdateCounter
	res.advance(StateHeaderValidated)

	bulk, err := savegame.ReadBody(f, h)
	if err != nil {
		return nil, err
	}
	res.advance(StateBlobRead)
	return bulk, nil
}

func (l *Loader) loadSnapshots(r *archive.Reader, dst target, log *zap.SugaredLogger) error {
	if err := dst.inventory.LoadPartial(r); err != nil {
		return fmt.Errorf("decode inventory: %w", err)
	}
	if err := dst.scenes.LoadAll(r); err != nil {
		return fmt.Errorf("decode scene arrays: %w", err)
	}
	if r.Remaining() > 0 {
		log.Debugf("%d trailing payload bytes ignored", r.Remaining())
	}
	return nil
}

func (l *Loader) switchScene(lc *Context, save *gamevar.Var, commit func() error, res *Result, log *zap.SugaredLogger) error {
	item := PreloadItem{
		Param:   save.SubVarAsInt(entranceVar),
		SceneID: save.SubVarAsInt(sceneVar),
	}
	res.SceneID, res.Entrance = item.SceneID, item.Param

	if lc.Engine == nil {
		if err := commit(); err != nil {
			return err
		}
		log.Warn("No engine attached, skipping scene switch")
		res.advance(StateReady)
		return nil
	}
	current, hasCurrent := lc.Engine.CurrentScene()
	if hasCurrent {
		item.PreloadID1 = current & 0xFFFF
	}

	if lc.Preload != nil && !lc.Preload(item, PercentStart) {
		log.Infow("Scene switch cancelled", "scene", item.SceneID)
		res.advance(StatePreloadAborted)
		return errs.ErrLoadCancelled
	}
	res.advance(StatePreloadProceeding)

	if err := commit(); err != nil {
		return err
	}
	res.advance(StateSceneSwitching)

	lc.Engine.ClearGlobalMessageQueue()
	if hasCurrent {
		if err := lc.Engine.UnloadScene(current); err != nil {
			return fmt.Errorf("unload scene %d: %w", current, err)
		}
	}

	if lc.Preload != nil {
		lc.Preload(item, PercentHalf)
	}

	if err := lc.Engine.LoadScene(item.SceneID); err != nil {
		return fmt.Errorf("load scene %d: %w", item.SceneID, err)
	}

	if lc.Preload != nil {
		lc.Preload(item, PercentDone)
	}

	lc.Engine.PostEnterScene(item.SceneID, item.Param)
	res.Switched = true
	res.advance(StateReady)
	log.Infow("Save loaded", "scene", item.SceneID, "entrance", item.Param)
	return nil
}
