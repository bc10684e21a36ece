package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/savegame"
)

// report is everything savedump knows about one save file.
type report struct {
	Path     string
	Valid    bool
	Meta     savegame.Metadata
	Header   savegame.Header
	Contents *savegame.Contents
}

func (r *report) lines() []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	add("file: %s", r.Path)
	if r.Valid {
		add("name: %s", r.Meta.SaveName)
	} else {
		add("name: %s (no metadata)", r.Meta.SaveName)
	}
	add("saved: %s", r.Meta.SavedAt().Format("2006-01-02 15:04"))
	add("playtime: %s", r.Meta.Playtime)
	add("version: %d magic: %q update counter: %d payload: %d bytes",
		r.Header.Version, r.Header.MagicString(), r.Header.UpdateCounter, r.Header.EncSize)

	if r.Contents == nil {
		return out
	}

	add("")
	add("variables:")
	r.Contents.Vars.Walk(func(depth int, v *gamevar.Var) bool {
		add("%s%s", strings.Repeat("  ", depth+1), v)
		for _, s := range v.Secondary() {
			add("%s~ %s", strings.Repeat("  ", depth+2), s)
		}
		return true
	})

	add("")
	items := r.Contents.Inventory.Items()
	add("inventory: %d items", len(items))
	for _, it := range items {
		add("  %d x%d", it.ID, it.Count)
	}

	add("")
	add("scenes: %d slots", r.Contents.Scenes.Len())
	for i := 0; i < r.Contents.Scenes.Len(); i++ {
		infos := r.Contents.Scenes.Slot(i)
		if len(infos) == 0 {
			continue
		}
		add("  [%d] %d objects", i, len(infos))
		for _, info := range infos {
			add("    obj %d scene %d at (%d,%d) statics %d movement %d flags %#x",
				info.ObjectID, info.SceneID, info.OX, info.OY, info.StaticsID, info.MovementID, info.Flags)
		}
	}
	return out
}

func (r *report) writeText(w io.Writer) error {
	for _, l := range r.lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *report) writePDF(output string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Save report: "+r.Path, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, r.Meta.SaveName)
	pdf.Ln(12)

	if r.Meta.Thumbnail != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, r.Meta.Thumbnail); err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("thumbnail", opts, &buf)
		pdf.ImageOptions("thumbnail", pdf.GetX(), pdf.GetY(), 60, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Courier", "", 9)
	for _, line := range r.lines() {
		pdf.MultiCell(0, 4.5, line, "", "L", false)
	}
	return pdf.OutputFileAndClose(output)
}
