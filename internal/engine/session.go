package engine

import (
	"go.uber.org/zap"

	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/inventory"
	"gamesave/internal/domain/savegame"
	"gamesave/internal/domain/scene"
	"gamesave/internal/usecase/loader"
)

// SceneSlots is the number of scene slots a fresh session tracks.
const SceneSlots = 64

// Session is the live state of one game: the variable tree created when
// the session starts, snapshot arrays, inventory, map table and engine.
type Session struct {
	Vars      *gamevar.Var
	Scenes    *scene.Table
	Inventory *inventory.Inventory
	Map       *savegame.MapTable
	Engine    *Engine

	UpdateCounter uint32
}

// DefaultVars builds the variable tree a new game starts with. SAVEGAME is
// only added by SaveState once a scene is active.
func DefaultVars() *gamevar.Var {
	root := gamevar.NewInt("GAME", 0)
	root.AddSubVarAsInt("MUSIC_ALLOWED", 1)
	root.AddSubVarAsInt("OBJSTATES", 0)
	return root
}

func NewSession(log *zap.SugaredLogger, scenes ...int32) *Session {
	return &Session{
		Vars:      DefaultVars(),
		Scenes:    scene.NewTable(SceneSlots, log),
		Inventory: inventory.New(),
		Map:       &savegame.MapTable{},
		Engine:    New(log, scenes...),
	}
}

// LoadContext wires the session into a loader context.
func (s *Session) LoadContext(preload loader.PreloadFunc) *loader.Context {
	return &loader.Context{
		Vars:          s.Vars,
		Scenes:        s.Scenes,
		Inventory:     s.Inventory,
		SideChannel:   s.Map,
		Engine:        s.Engine,
		Preload:       preload,
		UpdateCounter: s.UpdateCounter,
	}
}

// Absorb copies back what a load changed in lc.
func (s *Session) Absorb(lc *loader.Context) {
	s.UpdateCounter = lc.UpdateCounter
	if lc.Inventory != nil {
		s.Inventory = lc.Inventory
	}
	if lc.Scenes != nil {
		s.Scenes = lc.Scenes
	}
}

// SaveState captures the session for savegame.Write. The current scene is
// recorded under OBJSTATES/SAVEGAME so a load returns to it; with no active
// scene SAVEGAME is dropped and a load of the save stays where it is. The
// state carries the next update counter, which the session only takes over
// through Saved.
func (s *Session) SaveState(entrance int32, meta savegame.Metadata) savegame.State {
	objStates := s.Vars.SubVarByName("OBJSTATES")
	if objStates == nil {
		objStates = s.Vars.AddSubVarAsInt("OBJSTATES", 0)
	}
	save := objStates.SubVarByName("SAVEGAME")
	if cur, ok := s.Engine.CurrentScene(); ok {
		if save == nil {
			save = objStates.AddSubVarAsInt("SAVEGAME", 0)
		}
		save.SetSubVarAsInt("Scene", cur)
		save.SetSubVarAsInt("Entrance", entrance)
	} else if save != nil {
		save.Remove()
	}
	return savegame.State{
		Vars:          objStates,
		Inventory:     s.Inventory,
		Scenes:        s.Scenes,
		SideChannel:   s.Map,
		UpdateCounter: s.UpdateCounter + 1,
		Metadata:      meta,
	}
}

// Saved records that st was written out.
func (s *Session) Saved(st savegame.State) {
	s.UpdateCounter = st.UpdateCounter
}
