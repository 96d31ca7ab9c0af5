package utils

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ZoneSet holds the enforcement-zone polygons cameras are expected to
// report from. A nil ZoneSet disables the check entirely.
type ZoneSet struct {
	features []*geojson.Feature
}

// LoadZones reads a GeoJSON feature collection of polygons. Features
// without polygon geometry are ignored.
func LoadZones(path string) (*ZoneSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	return ParseZones(data)
}

func ParseZones(data []byte) (*ZoneSet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse zones geojson: %w", err)
	}

	zs := &ZoneSet{}
	for _, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			zs.features = append(zs.features, f)
		}
	}
	return zs, nil
}

// Len returns the number of usable zone polygons.
func (z *ZoneSet) Len() int {
	if z == nil {
		return 0
	}
	return len(z.features)
}

// Contains reports whether the coordinate falls inside any enforcement
// zone, and the name of the first matching zone. Longitude comes first in
// orb points.
func (z *ZoneSet) Contains(lat, lng float64) (string, bool) {
	if z == nil {
		return "", false
	}
	point := orb.Point{lng, lat}
	for _, f := range z.features {
		inside := false
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			inside = planar.PolygonContains(geom, point)
		case orb.MultiPolygon:
			inside = planar.MultiPolygonContains(geom, point)
		}
		if inside {
			name, _ := f.Properties["name"].(string)
			return name, true
		}
	}
	return "", false
}
