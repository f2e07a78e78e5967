package complaint

import (
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/models"
	"context"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0088

// Markers returns the most recent complaints that have coordinates. With near set,
// only those within the radius of the point are kept.
func (s *Service) Markers(ctx context.Context, near *models.Near) ([]models.ComplaintMarker, error) {
	markers, err := s.Storage.ListMarkers(ctx, config.MarkerLimit)
	if err != nil {
		return nil, err
	}
	if near == nil {
		return markers, nil
	}

	center := s2.LatLngFromDegrees(near.Lat, near.Lng)
	kept := markers[:0]
	for _, m := range markers {
		if DistanceKm(center, s2.LatLngFromDegrees(m.Lat, m.Lng)) <= near.RadiusKm {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b s2.LatLng) float64 {
	return a.Distance(b).Radians() * earthRadiusKm
}
