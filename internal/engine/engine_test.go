package engine

import (
	"errors"
	"testing"

	errs "gamesave/internal/errors"
	"gamesave/internal/usecase/loader"
)

func TestEngineSceneLifecycle(t *testing.T) {
	e := New(nil, 1, 2)

	if _, ok := e.CurrentScene(); ok {
		t.Fatalf("expected no active scene")
	}
	if err := e.LoadScene(3); !errors.Is(err, errs.ErrUnknownScene) {
		t.Fatalf("expected ErrUnknownScene, got %v", err)
	}
	if err := e.LoadScene(1); err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if err := e.UnloadScene(2); !errors.Is(err, errs.ErrSceneNotLoaded) {
		t.Fatalf("expected ErrSceneNotLoaded, got %v", err)
	}
	if err := e.UnloadScene(1); err != nil {
		t.Fatalf("unload scene: %v", err)
	}
	if _, ok := e.CurrentScene(); ok {
		t.Fatalf("expected no active scene after unload")
	}
}

func TestEngineQueue(t *testing.T) {
	e := New(nil)
	e.Post(Command{SceneID: 1, Kind: 5})
	e.ClearGlobalMessageQueue()
	e.PostEnterScene(7, 2)

	q := e.Queue()
	if len(q) != 1 {
		t.Fatalf("expected 1 command, got %d", len(q))
	}
	want := Command{SceneID: 7, Kind: loader.EnterSceneKind, Num: loader.EnterSceneNum, Flags: loader.EnterSceneFlags, Param: 2}
	if q[0] != want {
		t.Fatalf("expected %+v, got %+v", want, q[0])
	}

	q[0].Param = 99
	if e.Queue()[0].Param != 2 {
		t.Fatalf("Queue must return a copy")
	}
}
