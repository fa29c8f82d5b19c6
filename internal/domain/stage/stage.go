// Package stage holds the tile layout a level is built from.
package stage

import (
	"math"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
)

// TileType represents the type of a tile
type TileType int

const (
	TileEmpty TileType = iota
	TileWall
	TileSpike
	TilePlatform
)

// Tile represents a single tile in the stage
type Tile struct {
	Type   TileType
	Solid  bool
	Damage int
}

// Stage is a tile grid. Rows are stored top first, the way stage files are
// written; world coordinates are in tiles with y up and the origin at the
// bottom left corner.
type Stage struct {
	Name     string
	Width    int
	Height   int
	TileSize int // pixels per tile, used by renderers only
	Tiles    [][]Tile
	Spawn    kinematic.Vec
}

// Rect is an axis-aligned box in world units.
type Rect struct {
	L, B, R, T float64
}

// Run is a horizontal strip of identical solid tiles.
type Run struct {
	Rect
	Tile Tile
}

// GetTile returns the tile at the given tile coordinates. Outside the grid
// every tile is a solid wall.
func (s *Stage) GetTile(tx, ty int) Tile {
	if tx < 0 || tx >= s.Width || ty < 0 || ty >= s.Height {
		return Tile{Type: TileWall, Solid: true}
	}
	return s.Tiles[ty][tx]
}

// TileAt returns the tile covering a world position.
func (s *Stage) TileAt(p kinematic.Vec) Tile {
	tx := int(math.Floor(p.X))
	ty := s.Height - 1 - int(math.Floor(p.Y))
	return s.GetTile(tx, ty)
}

// IsSolidAt checks if the tile at a world position is solid
func (s *Stage) IsSolidAt(p kinematic.Vec) bool {
	return s.TileAt(p).Solid
}

// TileRect returns the world box of tile (tx, ty).
func (s *Stage) TileRect(tx, ty int) Rect {
	top := float64(s.Height - ty)
	return Rect{L: float64(tx), B: top - 1, R: float64(tx + 1), T: top}
}

// SolidRuns merges horizontally adjacent solid tiles of the same kind into
// boxes, so a floor becomes one shape instead of one per tile.
func (s *Stage) SolidRuns() []Run {
	var runs []Run
	for ty := 0; ty < s.Height; ty++ {
		tx := 0
		for tx < s.Width {
			tile := s.Tiles[ty][tx]
			if !tile.Solid {
				tx++
				continue
			}
			start := tx
			for tx < s.Width && s.Tiles[ty][tx] == tile {
				tx++
			}
			rect := s.TileRect(start, ty)
			rect.R = float64(tx)
			runs = append(runs, Run{Rect: rect, Tile: tile})
		}
	}
	return runs
}

// Bounds returns the world box covering the whole grid.
func (s *Stage) Bounds() Rect {
	return Rect{L: 0, B: 0, R: float64(s.Width), T: float64(s.Height)}
}
