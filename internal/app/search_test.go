package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/geo"
	"hotel_mapping/internal/storage/memory"
)

func seed(t *testing.T, listings ...domain.NewHotel) (*SearchService, []domain.Hotel) {
	t.Helper()
	store := memory.New()
	ls := NewListingService(store)
	var out []domain.Hotel
	for _, in := range listings {
		h, err := ls.Create(context.Background(), "owner", in)
		require.NoError(t, err)
		out = append(out, h)
	}
	return NewSearchService(store), out
}

func around(lat, lon, radius float64) domain.SearchQuery {
	return domain.SearchQuery{Center: domain.NewPoint(lat, lon), RadiusMeters: radius}
}

func names(ms []domain.HotelMatch) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Name)
	}
	return out
}

func TestSearchCoincidentAndDistantCenter(t *testing.T) {
	svc, _ := seed(t, newListing("Manhattan", 40.7128, -74.0060, 100))
	ctx := context.Background()

	got, err := svc.Search(ctx, around(40.7128, -74.0060, 1000))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].DistanceMeters, 1e-6)

	got, err = svc.Search(ctx, around(41.7128, -74.0060, 10_000))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchRadiusAndOrdering(t *testing.T) {
	center := [2]float64{48.8566, 2.3522} // Paris
	svc, _ := seed(t,
		newListing("far", 49.3, 2.3522, 1),     // ~49 km
		newListing("near", 48.86, 2.3522, 1),   // ~0.4 km
		newListing("mid", 49.0, 2.3522, 1),     // ~16 km
		newListing("outside", 50.0, 2.3522, 1), // ~127 km
	)

	got, err := svc.Search(context.Background(), around(center[0], center[1], 50_000))
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far"}, names(got))
	for i, m := range got {
		d := geo.DistanceMeters(center[0], center[1], m.Location.Lat(), m.Location.Lon())
		assert.InDelta(t, d, m.DistanceMeters, 1e-9)
		assert.LessOrEqual(t, m.DistanceMeters, 50_000.0)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].DistanceMeters, m.DistanceMeters)
		}
	}
}

func TestSearchPriceWindow(t *testing.T) {
	svc, _ := seed(t,
		newListing("cheap", 0, 0, 75),
		newListing("mid", 0, 0.001, 120),
		newListing("pricey", 0, 0.002, 250),
	)
	q := around(0, 0, 5_000)
	q.MinPrice, q.MaxPrice = fp(100), fp(200)

	got, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, names(got))
}

func TestSearchAmenitiesAnyMatch(t *testing.T) {
	plain := newListing("plain", 0, 0, 1)
	plain.Amenities = []string{"wifi", "breakfast"}
	resort := newListing("resort", 0, 0.001, 1)
	resort.Amenities = []string{"wifi", "pool", "spa"}
	poolOnly := newListing("pool only", 0, 0.002, 1)
	poolOnly.Amenities = []string{"pool"}
	svc, _ := seed(t, plain, resort, poolOnly)

	q := around(0, 0, 5_000)
	q.Amenities = []string{"pool", "spa"}
	got, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"resort", "pool only"}, names(got))

	// exact, case-sensitive tags
	q.Amenities = []string{"Pool"}
	got, err = svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchHomeOfficeAndRating(t *testing.T) {
	a := newListing("a", 0, 0, 1)
	a.HomeOfficeAmenities = []string{"desk"}
	a.Rating = fp(4.8)
	b := newListing("b", 0, 0.001, 1)
	b.HomeOfficeAmenities = []string{"desk"}
	b.Rating = fp(3.9)
	c := newListing("c", 0, 0.002, 1) // no rating
	c.HomeOfficeAmenities = []string{"desk"}
	d := newListing("d", 0, 0.003, 1)
	d.Rating = fp(5)
	svc, _ := seed(t, a, b, c, d)

	q := around(0, 0, 5_000)
	q.HomeOfficeAmenities = []string{"desk", "monitor"}
	q.MinRating = fp(4)
	got, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(got))
}

func TestSearchZeroRadiusOnlyCoincident(t *testing.T) {
	svc, _ := seed(t,
		newListing("here", 10, 10, 1),
		newListing("next door", 10, 10.0001, 1),
	)
	got, err := svc.Search(context.Background(), around(10, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"here"}, names(got))
}

func TestSearchAcrossAntimeridian(t *testing.T) {
	svc, _ := seed(t,
		newListing("west", -17.0, 179.99, 1),
		newListing("east", -17.0, -179.99, 1),
	)
	got, err := svc.Search(context.Background(), around(-17.0, 179.995, 5_000))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"west", "east"}, names(got))
}

func TestSearchRejectsBadInput(t *testing.T) {
	svc, _ := seed(t)
	for _, q := range []domain.SearchQuery{
		around(91, 0, 10),
		around(0, 181, 10),
		around(0, 0, -1),
		around(0, 0, math.NaN()),
		around(0, 0, math.Inf(1)),
	} {
		_, err := svc.Search(context.Background(), q)
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve), "query %+v: %v", q, err)
	}
}

func TestSearchPureTiesBreakByID(t *testing.T) {
	p := domain.NewPoint(1, 1)
	cands := []domain.Hotel{
		{ID: "b", Name: "b", Location: p},
		{ID: "a", Name: "a", Location: p},
	}
	got := Search(cands, around(1, 1, 10))
	assert.Equal(t, []string{"a", "b"}, names(got))
}
