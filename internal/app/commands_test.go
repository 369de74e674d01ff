package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/geo"
	"hotel_mapping/internal/storage/memory"
)

type fakeFeed struct {
	recs []map[string]any
	err  error
}

func (f fakeFeed) GetListings(ctx context.Context) ([]map[string]any, error) {
	return f.recs, f.err
}

// failingRepo wraps a real store and fails every insert.
type failingRepo struct {
	*memory.Store
}

func (failingRepo) InsertHotel(ctx context.Context, h domain.Hotel) error {
	return errors.New("disk full")
}

func TestImportCreatesValidRecordsAndSkipsBadOnes(t *testing.T) {
	store := memory.New()
	feed := fakeFeed{recs: []map[string]any{
		{"name": "A", "latitude": 1.0, "longitude": 2.0, "price": 10.0, "address": "a"},
		{"hotel_name": "B", "location": map[string]any{"type": "Point", "coordinates": []any{13.4, 52.5}},
			"price_per_night": "89,99", "address": "b", "facilities": []any{"wifi", map[string]any{"name": "pool"}}},
		{"name": "no coords", "price": 1.0, "address": "c"},
		{"name": "no price", "lat": 1.0, "lng": 1.0, "address": "d"},
		{"latitude": 1.0, "longitude": 1.0, "price": 1.0},                                          // no name
		{"name": "out of range", "latitude": 99.0, "longitude": 1.0, "price": 1.0, "address": "e"}, // fails validation
	}}
	svc := NewImportService(feed, NewListingService(store), 3)

	rep, err := svc.Import(context.Background(), "importer")
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Fetched: 6, Created: 2, Skipped: 4}, rep)

	mine, err := store.ListHotelsByOwner(context.Background(), "importer")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	b, err := store.HotelsWithin(context.Background(), geo.BoundingBoxAround(52.5, 13.4, 10))
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "B", b[0].Name)
	assert.Equal(t, 89.99, b[0].Price)
	assert.Equal(t, []string{"wifi", "pool"}, b[0].Amenities)
}

func TestImportReportsStoreFailures(t *testing.T) {
	feed := fakeFeed{recs: []map[string]any{
		{"name": "A", "latitude": 1.0, "longitude": 2.0, "price": 10.0, "address": "a"},
		{"name": "B", "latitude": 1.0, "longitude": 2.0, "price": 10.0, "address": "b"},
	}}
	svc := NewImportService(feed, NewListingService(failingRepo{memory.New()}), 2)

	rep, err := svc.Import(context.Background(), "importer")
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 2, rep.Failures)
	assert.Equal(t, 0, rep.Created)
}

func TestImportFeedError(t *testing.T) {
	svc := NewImportService(fakeFeed{err: errors.New("unreachable")}, NewListingService(memory.New()), 1)
	_, err := svc.Import(context.Background(), "importer")
	assert.ErrorContains(t, err, "unreachable")
}

func TestMapFeedListing(t *testing.T) {
	in, err := mapFeedListing(map[string]any{
		"title":       "  Seaside  ",
		"summary":     "Nice",
		"rate":        map[string]any{"amount": 42},
		"location":    map[string]any{"latitude": "41,38", "longitude": 2.17},
		"score":       "4.5",
		"photos":      []any{map[string]any{"url": "u1"}, "u2", ""},
		"address_raw": "Las Ramblas",
		"contact":     map[string]any{"phone": "+34", "email": "x@y.z"},
		"links":       map[string]any{"booking": "https://b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Seaside", in.Name)
	assert.Equal(t, "Nice", *in.Description)
	assert.Equal(t, 42.0, in.Price)
	assert.Equal(t, 41.38, in.Latitude)
	assert.Equal(t, 2.17, in.Longitude)
	assert.Equal(t, 4.5, *in.Rating)
	assert.Equal(t, []string{"u1", "u2"}, in.Images)
	assert.Equal(t, "Las Ramblas", in.Address)
	assert.Equal(t, "+34", *in.Phone)
	assert.Equal(t, "x@y.z", *in.Email)
	assert.Equal(t, "https://b", *in.BookingURL)

	_, err = mapFeedListing(map[string]any{"name": "x", "price": 1.0})
	assert.ErrorIs(t, err, errMissingLocation)
	_, err = mapFeedListing(map[string]any{"name": "x", "lat": 1.0, "lon": 1.0})
	assert.ErrorIs(t, err, errMissingPrice)
	_, err = mapFeedListing(map[string]any{"lat": 1.0, "lon": 1.0, "price": 1.0})
	assert.ErrorIs(t, err, errMissingName)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"89.99", 89.99, true},
		{" 89,99 ", 89.99, true},
		{"8,0", 8, true},
		{"1200", 1200, true},
		{"1,200", 0, false},
		{"1,200.50", 0, false},
		{"1.200,50", 0, false},
		{"1,2,3", 0, false},
		{"12,", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDecimal(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestMapFeedListingSkipsAmbiguousPrice(t *testing.T) {
	_, err := mapFeedListing(map[string]any{"name": "x", "lat": 1.0, "lon": 1.0, "price": "1,200", "address": "a"})
	assert.ErrorIs(t, err, errMissingPrice)
}
