package engine

import (
	"fmt"

	"go.uber.org/zap"

	errs "gamesave/internal/errors"
	"gamesave/internal/usecase/loader"
)

// Command is a message posted to the game's global queue.
type Command struct {
	SceneID int32 `json:"scene_id"`
	Kind    int32 `json:"kind"`
	Num     int32 `json:"num"`
	Flags   int32 `json:"flags"`
	Param   int32 `json:"param"`
}

// Engine is a headless stand-in for the running game: it tracks which
// scene is active and what sits in the global message queue, which is all
// a save load needs from it.
type Engine struct {
	known   map[int32]bool
	current int32
	active  bool
	queue   []Command
	log     *zap.SugaredLogger
}

// New returns an Engine that accepts the given scene ids. With no ids any
// scene can be loaded.
func New(log *zap.SugaredLogger, scenes ...int32) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{known: make(map[int32]bool, len(scenes)), log: log}
	for _, id := range scenes {
		e.known[id] = true
	}
	return e
}

var _ loader.Engine = (*Engine)(nil)

func (e *Engine) CurrentScene() (int32, bool) {
	return e.current, e.active
}

func (e *Engine) LoadScene(sceneID int32) error {
	if len(e.known) > 0 && !e.known[sceneID] {
		return fmt.Errorf("scene %d: %w", sceneID, errs.ErrUnknownScene)
	}
	e.current, e.active = sceneID, true
	e.log.Debugf("Loaded scene %d", sceneID)
	return nil
}

func (e *Engine) UnloadScene(sceneID int32) error {
	if !e.active || e.current != sceneID {
		return fmt.Errorf("scene %d: %w", sceneID, errs.ErrSceneNotLoaded)
	}
	e.current, e.active = 0, false
	e.log.Debugf("Unloaded scene %d", sceneID)
	return nil
}

func (e *Engine) Post(cmd Command) {
	e.queue = append(e.queue, cmd)
}

func (e *Engine) ClearGlobalMessageQueue() {
	e.queue = nil
}

// PostEnterScene queues the command that hands control back to gameplay at
// the saved entrance.
func (e *Engine) PostEnterScene(sceneID, entrance int32) {
	e.Post(Command{
		SceneID: sceneID,
		Kind:    loader.EnterSceneKind,
		Num:     loader.EnterSceneNum,
		Flags:   loader.EnterSceneFlags,
		Param:   entrance,
	})
}

// Queue returns a copy of the pending commands.
func (e *Engine) Queue() []Command {
	return append([]Command(nil), e.queue...)
}
