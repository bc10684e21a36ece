package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/inventory"
	"gamesave/internal/domain/savegame"
	"gamesave/internal/domain/scene"
)

func writeSave(t *testing.T) string {
	t.Helper()
	vars := gamevar.NewInt("OBJSTATES", 0)
	vars.AddSubVar(gamevar.NewString("Hero", "Pipe"))
	door := vars.AddSubVarAsInt("DOOR", 1)
	door.AddSecondary(gamevar.NewInt("Ghost", 9))

	scenes := scene.NewTable(2, nil)
	scenes.SetSlot(1, []scene.PicAniInfo{{ObjectID: 42, OX: 3, OY: 4}})

	var buf bytes.Buffer
	err := savegame.Write(&buf, savegame.Registry(), savegame.State{
		Vars:          vars,
		Inventory:     inventory.New(inventory.Item{ID: 7, Count: 3}),
		Scenes:        scenes,
		UpdateCounter: 2,
		Metadata:      savegame.DummyMetadata(),
	})
	if err != nil {
		t.Fatalf("write save: %v", err)
	}

	path := filepath.Join(t.TempDir(), "slot.sav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestReportText(t *testing.T) {
	rep, err := buildReport(writeSave(t), savegame.BulkVersion, true, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	var out bytes.Buffer
	if err := rep.writeText(&out); err != nil {
		t.Fatalf("write text: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"name: 2016-09-20 09:56",
		"update counter: 2",
		"Hero:string=Pipe",
		"~ Ghost:int=9",
		"7 x3",
		"[1] 1 objects",
		"obj 42",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in report:\n%s", want, text)
		}
	}
}

func TestReportMetaOnly(t *testing.T) {
	rep, err := buildReport(writeSave(t), savegame.BulkVersion, false, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if rep.Contents != nil {
		t.Fatalf("expected no decoded contents")
	}
	if !rep.Valid {
		t.Fatalf("expected valid metadata")
	}
}

func TestReportWrongVersion(t *testing.T) {
	if _, err := buildReport(writeSave(t), savegame.BulkVersion+1, true, zap.NewNop().Sugar()); err == nil {
		t.Fatalf("expected version mismatch")
	}
}

func TestReportPDF(t *testing.T) {
	rep, err := buildReport(writeSave(t), savegame.BulkVersion, true, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	out := filepath.Join(t.TempDir(), "report.pdf")
	if err := rep.writePDF(out); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF file, got %v", err)
	}
}
