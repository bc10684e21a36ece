package saves

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"go.uber.org/zap"

	"gamesave/internal/engine"
	errs "gamesave/internal/errors"
	repo "gamesave/internal/repository"
	"gamesave/internal/usecase/loader"
)

func newUseCase(t *testing.T, staged bool) (*SaveUseCase, *engine.Session, *repo.FileSlotStore) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repo.NewFileSlotStore(t.TempDir(), ".sav", log)
	session := engine.NewSession(log)
	return NewSaveUseCase(store, session, 0, staged, log), session, store
}

func TestSaveListAndDescribe(t *testing.T) {
	ctx := context.Background()
	uc, session, _ := newUseCase(t, true)
	if err := session.Engine.LoadScene(1601); err != nil {
		t.Fatalf("load scene: %v", err)
	}

	thumb := image.NewRGBA(image.Rect(0, 0, 2, 2))
	thumb.Set(0, 0, color.RGBA{G: 255, A: 255})

	sum, err := uc.Save(ctx, "slot1", 2, 95*time.Second+300*time.Millisecond, thumb)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !sum.Valid || !sum.HasThumb {
		t.Fatalf("expected valid summary with thumbnail, got %+v", sum)
	}
	if sum.PlaytimeMs != 95000 {
		t.Fatalf("expected playtime 95000ms, got %d", sum.PlaytimeMs)
	}
	if len(sum.SaveName) != len("2006-01-02 15:04") {
		t.Fatalf("unexpected save name %q", sum.SaveName)
	}

	list, err := uc.ListSlots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Slot != "slot1" || list[0].Size == 0 {
		t.Fatalf("unexpected listing %+v", list)
	}

	img, err := uc.Thumbnail(ctx, "slot1")
	if err != nil || img == nil || img.Bounds().Dx() != 2 {
		t.Fatalf("expected 2px thumbnail, got %v, %v", img, err)
	}
}

func TestDescribeFallsBackToDummy(t *testing.T) {
	ctx := context.Background()
	uc, _, store := newUseCase(t, true)
	if err := store.Write(ctx, "junk", []byte("definitely not a save")); err != nil {
		t.Fatalf("write: %v", err)
	}

	sum, err := uc.Describe(ctx, "junk")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if sum.Valid {
		t.Fatalf("expected invalid summary")
	}
	if sum.PlaytimeMs != 1000 {
		t.Fatalf("expected dummy playtime 1000ms, got %d", sum.PlaytimeMs)
	}
	want := time.Date(2016, 9, 20, 0, 0, 0, 0, time.UTC)
	if y, m, d := sum.SavedAt.Date(); y != want.Year() || m != want.Month() || d != want.Day() {
		t.Fatalf("expected dummy date 2016-09-20, got %v", sum.SavedAt)
	}

	if _, err := uc.Inspect(ctx, "junk"); err == nil {
		t.Fatalf("expected inspect of junk to fail")
	}
}

func TestSaveThenLoadRestoresSession(t *testing.T) {
	ctx := context.Background()
	uc, session, _ := newUseCase(t, true)
	if err := session.Engine.LoadScene(1601); err != nil {
		t.Fatalf("load scene: %v", err)
	}
	session.Vars.Lookup("OBJSTATES").AddSubVarAsInt("LEVER", 1)

	if _, err := uc.Save(ctx, "slot1", 5, time.Minute, nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	session.Vars.Lookup("OBJSTATES/LEVER").SetInt(0)
	if err := uc.EnterScene(200); err != nil {
		t.Fatalf("enter scene: %v", err)
	}

	var percents []int
	res, err := uc.Load(ctx, "slot1", func(_ loader.PreloadItem, pct int) bool {
		percents = append(percents, pct)
		return true
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.State != loader.StateReady || len(percents) != 3 {
		t.Fatalf("expected ready with 3 checkpoints, got %s %v", res.State, percents)
	}
	if cur, _ := uc.CurrentScene(); cur != 1601 {
		t.Fatalf("expected scene 1601, got %d", cur)
	}
	if got := session.Vars.Lookup("OBJSTATES/LEVER").Int(); got != 1 {
		t.Fatalf("expected LEVER=1, got %d", got)
	}

	insp, err := uc.Inspect(ctx, "slot1")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if insp.Vars.Name != "OBJSTATES" || insp.UpdateCounter != 1 || insp.SceneSlots != engine.SceneSlots {
		t.Fatalf("unexpected inspection %+v", insp)
	}
}

func TestLoadMissingSlot(t *testing.T) {
	uc, _, _ := newUseCase(t, true)
	res, err := uc.Load(context.Background(), "ghost", nil)
	if !errors.Is(err, errs.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
	if res.State != loader.StateIdle {
		t.Fatalf("expected idle, got %s", res.State)
	}
}

func TestVarNodeIncludesSecondary(t *testing.T) {
	uc, session, _ := newUseCase(t, true)
	session.Vars.Lookup("OBJSTATES").AddSubVarAsInt("A", 3)

	node := uc.Vars()
	if node.Name != "GAME" {
		t.Fatalf("expected GAME root, got %s", node.Name)
	}
	var found bool
	for _, c := range node.SubVars {
		if c.Name == "OBJSTATES" {
			for _, cc := range c.SubVars {
				found = found || (cc.Name == "A" && cc.Value == int32(3))
			}
		}
	}
	if !found {
		t.Fatalf("expected OBJSTATES/A=3 in view")
	}
}

type failingStore struct {
	*repo.FileSlotStore
	err error
}

func (s failingStore) Write(ctx context.Context, slot string, data []byte) error {
	return s.err
}

func TestFailedSaveKeepsUpdateCounter(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	files := repo.NewFileSlotStore(t.TempDir(), ".sav", log)
	session := engine.NewSession(log)
	if err := session.Engine.LoadScene(1601); err != nil {
		t.Fatalf("load scene: %v", err)
	}

	diskFull := errors.New("disk full")
	uc := NewSaveUseCase(failingStore{FileSlotStore: files, err: diskFull}, session, 0, true, log)
	if _, err := uc.Save(ctx, "slot1", 0, time.Minute, nil); !errors.Is(err, diskFull) {
		t.Fatalf("expected disk full, got %v", err)
	}
	if session.UpdateCounter != 0 {
		t.Fatalf("expected update counter 0 after failed save, got %d", session.UpdateCounter)
	}

	uc = NewSaveUseCase(files, session, 0, true, log)
	if _, err := uc.Save(ctx, "slot1", 0, time.Minute, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if session.UpdateCounter != 1 {
		t.Fatalf("expected update counter 1, got %d", session.UpdateCounter)
	}
	insp, err := uc.Inspect(ctx, "slot1")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if insp.UpdateCounter != 1 {
		t.Fatalf("expected stored counter 1, got %d", insp.UpdateCounter)
	}
}

func TestBadSlotNameIsRecoverable(t *testing.T) {
	ctx := context.Background()
	uc, session, _ := newUseCase(t, true)

	_, err := uc.Load(ctx, "a/b", nil)
	if !errors.Is(err, errs.ErrBadSlotName) {
		t.Fatalf("expected ErrBadSlotName, got %v", err)
	}
	if errs.Classify(err) != errs.ClassRecoverable {
		t.Fatalf("expected recoverable, got %s", errs.Classify(err))
	}

	if _, err := uc.Save(ctx, "a/b", 0, time.Minute, nil); !errors.Is(err, errs.ErrBadSlotName) {
		t.Fatalf("expected ErrBadSlotName on save, got %v", err)
	}
	if session.UpdateCounter != 0 {
		t.Fatalf("expected update counter 0, got %d", session.UpdateCounter)
	}
}
