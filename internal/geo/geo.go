// Package geo computes great-circle distances between venues.
package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// EarthRadiusMi is the mean radius of Earth in miles.
	EarthRadiusMi = 3958.8
)

// Point is a WGS-84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Site is a named point, typically a venue keyed by its config key.
type Site struct {
	Key   string
	Point Point
}

// Haversine returns the great-circle distance between p and q on a sphere
// of the given radius. The result is in the radius' unit.
func Haversine(p, q Point, radius float64) float64 {
	dLat := degToRad(q.Lat - p.Lat)
	dLon := degToRad(q.Lon - p.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(degToRad(p.Lat))*math.Cos(degToRad(q.Lat))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

// Matrix holds the pairwise distances (km) between a fixed set of sites.
type Matrix struct {
	index map[string]int
	dist  *mat.SymDense
}

// NewMatrix precomputes the distance between every pair of sites.
// Duplicate keys keep the first occurrence.
func NewMatrix(sites []Site) *Matrix {
	index := make(map[string]int, len(sites))
	var points []Point
	for _, s := range sites {
		if _, ok := index[s.Key]; ok {
			continue
		}
		index[s.Key] = len(points)
		points = append(points, s.Point)
	}

	m := &Matrix{index: index}
	if len(points) == 0 {
		return m
	}
	m.dist = mat.NewSymDense(len(points), nil)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			m.dist.SetSym(i, j, Haversine(points[i], points[j], EarthRadiusKm))
		}
	}
	return m
}

// Distance returns the distance in kilometers between two site keys. It is
// 0 when either key is unknown or both keys are equal.
func (m *Matrix) Distance(a, b string) float64 {
	if a == b {
		return 0
	}
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.dist.At(i, j)
}
