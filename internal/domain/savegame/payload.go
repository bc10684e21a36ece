package savegame

import (
	"fmt"

	"go.uber.org/zap"

	"gamesave/internal/domain/archive"
	"gamesave/internal/domain/gamevar"
	"gamesave/internal/domain/inventory"
	"gamesave/internal/domain/scene"
)

// Registry returns the archive classes a save payload may contain.
func Registry() *archive.Registry {
	return archive.NewRegistry(gamevar.Classes()...)
}

// Contents is a fully decoded payload, detached from any live game state.
type Contents struct {
	Vars      *gamevar.Var
	Inventory *inventory.Inventory
	Scenes    *scene.Table
}

// DecodePayload decodes a deobfuscated payload in one go. The loader does
// not use it, since it merges the tree before reading the rest; it serves
// tools that only inspect saves.
func DecodePayload(reg *archive.Registry, payload []byte, log *zap.SugaredLogger) (*Contents, error) {
	r := archive.NewReader(payload, reg, log)

	vars, err := gamevar.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	c := &Contents{
		Vars:      vars,
		Inventory: inventory.New(),
		Scenes:    scene.NewTable(0, log),
	}
	if err := c.Inventory.LoadPartial(r); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if err := c.Scenes.LoadAll(r); err != nil {
		return nil, fmt.Errorf("decode scenes: %w", err)
	}
	return c, nil
}
