package config

import "fmt"

// StageConfig is the root config for stage JSON files
type StageConfig struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Size        StageSizeConfig              `json:"size"`
	PlayerSpawn PositionConfig               `json:"playerSpawn"`
	Layers      LayersConfig                 `json:"layers"`
	TileMapping map[string]TileMappingConfig `json:"tileMapping"`
	Spawns      []SpawnConfig                `json:"spawns"`
}

// StageSizeConfig is in pixels, like the positions.
type StageSizeConfig struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	TileSize int `json:"tileSize"`
}

// PositionConfig is a pixel position, y down from the top of the stage.
type PositionConfig struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LayersConfig holds one string per tile row, top row first.
type LayersConfig struct {
	Collision []string `json:"collision"`
}

type TileMappingConfig struct {
	Type   string `json:"type"`
	Solid  bool   `json:"solid"`
	Damage int    `json:"damage,omitempty"`
}

// SpawnConfig places an extra character in the stage. Extra characters are
// idle unless a script drives them and can be possessed.
type SpawnConfig struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Script string `json:"script,omitempty"`
}

// Validate reports stages that cannot be built.
func (c *StageConfig) Validate() error {
	if c.Size.TileSize <= 0 {
		return fmt.Errorf("tile size %d must be positive", c.Size.TileSize)
	}
	if c.Size.Width <= 0 || c.Size.Width%c.Size.TileSize != 0 {
		return fmt.Errorf("width %d is not a multiple of tile size %d", c.Size.Width, c.Size.TileSize)
	}
	if len(c.Layers.Collision) == 0 {
		return fmt.Errorf("collision layer is empty")
	}
	for key := range c.TileMapping {
		if len([]rune(key)) != 1 {
			return fmt.Errorf("tile mapping key %q must be a single character", key)
		}
	}
	return nil
}
