// Package mapscene describes what the browser map widget draws: base tiles,
// an optional boundary outline, city markers and a heat layer.
package mapscene

// TileStyle is the key of a base tile set as submitted by the map controls.
type TileStyle string

const (
	TileCartoDBPositron TileStyle = "cartodb-positron"
	TileOpenStreetMap   TileStyle = "openstreetmap"
	TileStamenTerrain   TileStyle = "stamen-terrain"
	TileStamenToner     TileStyle = "stamen-toner"
)

// DefaultTileStyle is used when the map controls do not pick one.
const DefaultTileStyle = TileCartoDBPositron

// Tiles is a base tile set the widget can load.
type Tiles struct {
	Key         TileStyle `json:"key"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Attribution string    `json:"attribution"`
	MaxZoom     int       `json:"maxZoom"`
}

var tileSets = []Tiles{
	{
		Key:         TileCartoDBPositron,
		Name:        "CartoDB Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		MaxZoom:     20,
	},
	{
		Key:         TileOpenStreetMap,
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
	},
	{
		Key:         TileStamenTerrain,
		Name:        "Stamen Terrain",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_terrain/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     18,
	},
	{
		Key:         TileStamenToner,
		Name:        "Stamen Toner",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://stadiamaps.com/">Stadia Maps</a> &copy; <a href="https://stamen.com/">Stamen Design</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     20,
	},
}

// TileSets returns every selectable tile set in menu order.
func TileSets() []Tiles {
	out := make([]Tiles, len(tileSets))
	copy(out, tileSets)
	return out
}

// LookupTiles returns the tile set for key.
func LookupTiles(key TileStyle) (Tiles, bool) {
	for _, t := range tileSets {
		if t.Key == key {
			return t, true
		}
	}
	return Tiles{}, false
}

// MustTiles is LookupTiles for keys known at compile time.
func MustTiles(key TileStyle) Tiles {
	t, ok := LookupTiles(key)
	if !ok {
		panic("mapscene: unknown tile style " + string(key))
	}
	return t
}
