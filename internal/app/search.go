package app

import (
	"cmp"
	"context"
	"math"
	"slices"

	"hotel_mapping/internal/adapters/observability"
	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/geo"
)

type SearchService struct {
	repo domain.HotelRepository
}

func NewSearchService(r domain.HotelRepository) *SearchService {
	return &SearchService{repo: r}
}

// Search returns listings within q.RadiusMeters of q.Center, nearest first, that pass every filter.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.HotelMatch, error) {
	if err := ValidateSearch(q); err != nil {
		return nil, err
	}
	box := geo.BoundingBoxAround(q.Center.Lat(), q.Center.Lon(), q.RadiusMeters)
	candidates, err := s.repo.HotelsWithin(ctx, box)
	if err != nil {
		return nil, err
	}
	out := Search(candidates, q)
	observability.ObserveSearch(len(candidates), len(out))
	return out, nil
}

func ValidateSearch(q domain.SearchQuery) error {
	if err := q.Center.Validate(); err != nil {
		return err
	}
	if math.IsNaN(q.RadiusMeters) || math.IsInf(q.RadiusMeters, 0) || q.RadiusMeters < 0 {
		return domain.NewValidationError("radius", "must be a non-negative number of meters")
	}
	return nil
}

// Search is the in-process pipeline: exact spherical distance, radius cut, nearest-first
// ordering, then conjunctive filters. Filtering after sorting keeps the order intact.
func Search(candidates []domain.Hotel, q domain.SearchQuery) []domain.HotelMatch {
	matches := make([]domain.HotelMatch, 0, len(candidates))
	for _, h := range candidates {
		d := geo.DistanceMeters(q.Center.Lat(), q.Center.Lon(), h.Location.Lat(), h.Location.Lon())
		if d > q.RadiusMeters {
			continue
		}
		matches = append(matches, domain.HotelMatch{Hotel: h, DistanceMeters: d})
	}

	slices.SortStableFunc(matches, func(a, b domain.HotelMatch) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := matches[:0]
	for _, m := range matches {
		if matchesFilters(m.Hotel, q) {
			out = append(out, m)
		}
	}
	return out
}

func matchesFilters(h domain.Hotel, q domain.SearchQuery) bool {
	if q.MinPrice != nil && h.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && h.Price > *q.MaxPrice {
		return false
	}
	if len(q.Amenities) > 0 && !intersects(h.Amenities, q.Amenities) {
		return false
	}
	if len(q.HomeOfficeAmenities) > 0 && !intersects(h.HomeOfficeAmenities, q.HomeOfficeAmenities) {
		return false
	}
	if q.MinRating != nil && (h.Rating == nil || *h.Rating < *q.MinRating) {
		return false
	}
	return true
}

// intersects is an ANY match with exact, case-sensitive comparison.
func intersects(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
