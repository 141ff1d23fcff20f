package processor

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"golang.org/x/crypto/blake2b"
)

// FootprintKey returns a stable key for a scene footprint. Footprints with
// byte-identical little-endian WKB share a key.
func FootprintKey(g orb.Geometry) (string, error) {
	if _, err := polygons(g); err != nil {
		return "", err
	}
	for _, p := range footprintPolygons(g) {
		if len(p) == 0 || len(p[0]) == 0 {
			return "", invalidGeometry("footprint has an empty ring")
		}
	}

	raw, err := wkb.Marshal(g, binary.LittleEndian)
	if err != nil {
		return "", invalidGeometry("footprint WKB encoding failed: %v", err)
	}

	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func footprintPolygons(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return geom
	}
	return nil
}
