package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	errs "gamesave/internal/errors"
)

// FileSlotStore keeps one save per file in a directory.
type FileSlotStore struct {
	dir string
	ext string
	log *zap.SugaredLogger
}

func NewFileSlotStore(dir, ext string, log *zap.SugaredLogger) *FileSlotStore {
	if ext == "" {
		ext = ".sav"
	}
	return &FileSlotStore{dir: dir, ext: ext, log: log}
}

func (s *FileSlotStore) path(slot string) string {
	return filepath.Join(s.dir, slot+s.ext)
}

func (s *FileSlotStore) Open(ctx context.Context, slot string) (io.ReadSeekCloser, error) {
	if err := checkSlotName(slot); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Write replaces the slot atomically through a temporary file.
func (s *FileSlotStore) Write(ctx context.Context, slot string, data []byte) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		return err
	}
	s.log.Debugw("Wrote save slot", "slot", slot, "bytes", len(data))
	return nil
}

func (s *FileSlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []SlotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, SlotInfo{
			Slot: strings.TrimSuffix(e.Name(), s.ext),
			Size: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *FileSlotStore) Delete(ctx context.Context, slot string) error {
	if err := checkSlotName(slot); err != nil {
		return err
	}
	err := os.Remove(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("slot %q: %w", slot, errs.ErrSlotNotFound)
	}
	return err
}
