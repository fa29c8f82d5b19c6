package system

import (
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
)

// LoadStage converts a StageConfig into a Stage
func LoadStage(cfg *config.StageConfig) *stage.Stage {
	tileSize := cfg.Size.TileSize
	tileWidth := cfg.Size.Width / tileSize
	tileHeight := len(cfg.Layers.Collision)

	tiles := make([][]stage.Tile, tileHeight)
	for y, row := range cfg.Layers.Collision {
		tiles[y] = make([]stage.Tile, tileWidth)
		for x, char := range []rune(row) {
			if x >= tileWidth {
				break
			}
			mapping, ok := cfg.TileMapping[string(char)]
			if !ok {
				continue
			}
			tiles[y][x] = stage.Tile{
				Type:   tileType(mapping.Type),
				Solid:  mapping.Solid,
				Damage: mapping.Damage,
			}
		}
	}

	s := &stage.Stage{
		Name:     cfg.Name,
		Width:    tileWidth,
		Height:   tileHeight,
		TileSize: tileSize,
		Tiles:    tiles,
	}
	s.Spawn = PixelToWorld(s, cfg.PlayerSpawn)
	return s
}

// PixelToWorld converts a stage file position (pixels, y down) to world
// units (tiles, y up).
func PixelToWorld(s *stage.Stage, p config.PositionConfig) kinematic.Vec {
	size := float64(s.TileSize)
	return kinematic.Vec{
		X: float64(p.X) / size,
		Y: float64(s.Height) - float64(p.Y)/size,
	}
}

func tileType(name string) stage.TileType {
	switch name {
	case "wall":
		return stage.TileWall
	case "spike":
		return stage.TileSpike
	case "platform":
		return stage.TilePlatform
	default:
		return stage.TileEmpty
	}
}
