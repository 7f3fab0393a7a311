// Package geo provides an in-process spherical index over activity
// locations. Activities are few enough that a guarded map with a linear
// great-circle scan beats maintaining a tree; the contract (immediate
// read-your-writes, no false negatives near poles or across hemispheres)
// is what matters.
package geo

import (
	"math"
	"sync"

	"spontimeet/internal/domain"
)

const earthRadiusMeters = 6371000.0

type point struct {
	lng, lat float64
}

// Index is a mutex-guarded spatial index keyed by activity id.
type Index struct {
	mu     sync.RWMutex
	points map[string]point
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{points: make(map[string]point)}
}

var _ domain.GeoIndex = (*Index)(nil)

// Insert adds or replaces the point for id. Visible to Within immediately.
func (ix *Index) Insert(id string, lng, lat float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.points[id] = point{lng: lng, lat: lat}
}

// Remove drops id from the index. Removing an absent id is a no-op.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.points, id)
}

// Within returns the ids of all points within radiusMeters great-circle
// distance of (lng, lat).
func (ix *Index) Within(lng, lat, radiusMeters float64) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var ids []string
	for id, p := range ix.points {
		if Haversine(lat, lng, p.lat, p.lng) <= radiusMeters {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.points)
}

// Haversine returns the great-circle distance in meters between two
// coordinates on a spherical earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0
	la1 := lat1 * math.Pi / 180.0
	la2 := lat2 * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(la1)*math.Cos(la2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
