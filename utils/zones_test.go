package utils

import "testing"

const testZones = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Central Junction"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[72.80, 19.00], [72.90, 19.00], [72.90, 19.10], [72.80, 19.10], [72.80, 19.00]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Camera Post"},
      "geometry": {"type": "Point", "coordinates": [72.85, 19.05]}
    }
  ]
}`

func TestParseZones(t *testing.T) {
	zs, err := ParseZones([]byte(testZones))
	if err != nil {
		t.Fatalf("ParseZones: %v", err)
	}
	// The point feature carries no area and must be dropped.
	if zs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", zs.Len())
	}
}

func TestZoneSetContains(t *testing.T) {
	zs, err := ParseZones([]byte(testZones))
	if err != nil {
		t.Fatalf("ParseZones: %v", err)
	}

	tests := []struct {
		name     string
		lat, lng float64
		inside   bool
		zone     string
	}{
		{"inside the junction", 19.05, 72.85, true, "Central Junction"},
		{"outside to the west", 19.05, 72.70, false, ""},
		{"outside to the north", 19.50, 72.85, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, inside := zs.Contains(tt.lat, tt.lng)
			if inside != tt.inside || zone != tt.zone {
				t.Errorf("Contains(%v, %v) = (%q, %v), want (%q, %v)",
					tt.lat, tt.lng, zone, inside, tt.zone, tt.inside)
			}
		})
	}
}

func TestNilZoneSet(t *testing.T) {
	var zs *ZoneSet
	if zs.Len() != 0 {
		t.Errorf("nil ZoneSet Len() = %d, want 0", zs.Len())
	}
	if _, inside := zs.Contains(19, 72); inside {
		t.Error("nil ZoneSet must contain nothing")
	}
}
