package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/storage/memory"
)

func sp(s string) *string   { return &s }
func fp(f float64) *float64 { return &f }

func newListing(name string, lat, lon, price float64) domain.NewHotel {
	return domain.NewHotel{Name: name, Address: name + " street", Price: price, Latitude: lat, Longitude: lon}
}

func TestCreateAndRead(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()

	in := newListing("Digital Nomad Paradise", 52.52, 13.405, 89.99)
	in.Description = sp("fast wifi")
	in.HomeOfficeAmenities = []string{"desk"}
	h, err := svc.Create(ctx, "owner-1", in)
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "owner-1", h.OwnerID)
	assert.Equal(t, [2]float64{13.405, 52.52}, h.Location.Coordinates)
	assert.Equal(t, []string{}, h.Amenities)

	got, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mine, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	none, err := svc.ListByOwner(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateRejectsInvalidListing(t *testing.T) {
	svc := NewListingService(memory.New())
	_, err := svc.Create(context.Background(), "o", newListing("x", 95, 0, 10))

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "latitude", ve.Fields[0].Field)
}

func TestListAllIsCapped(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	for i := 0; i < domain.MaxBrowseLimit+5; i++ {
		_, err := svc.Create(ctx, "o", newListing(fmt.Sprintf("h%d", i), 0, 0, 1))
		require.NoError(t, err)
	}
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, domain.MaxBrowseLimit)
}

func TestUpdatePartialMerge(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	in := newListing("Hub", 51.5074, -0.1276, 150)
	in.Rating = fp(4.5)
	in.Phone = sp("+44")
	h, err := svc.Create(ctx, "o", in)
	require.NoError(t, err)

	got, err := svc.Update(ctx, h.ID, "o", domain.HotelPatch{
		Price: domain.Some(120.0),
		Phone: domain.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Price)
	assert.Nil(t, got.Phone)
	assert.Equal(t, "Hub", got.Name)
	assert.Equal(t, 4.5, *got.Rating)
}

func TestUpdateEmptyPatchLeavesListingUnchanged(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	h, err := svc.Create(ctx, "o", newListing("Same", 10, 10, 10))
	require.NoError(t, err)

	got, err := svc.Update(ctx, h.ID, "o", domain.HotelPatch{})
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestUpdateLatitudeAloneKeepsPoint(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	h, err := svc.Create(ctx, "o", newListing("Pinned", 40.7128, -74.006, 10))
	require.NoError(t, err)

	got, err := svc.Update(ctx, h.ID, "o", domain.HotelPatch{Latitude: domain.Some(41.0)})
	require.NoError(t, err)
	assert.Equal(t, h.Location, got.Location)

	got, err = svc.Update(ctx, h.ID, "o", domain.HotelPatch{Latitude: domain.Some(41.0), Longitude: domain.Some(-73.0)})
	require.NoError(t, err)
	assert.Equal(t, domain.NewPoint(41.0, -73.0), got.Location)
}

func TestUpdateRejectsNullRequiredField(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	h, err := svc.Create(ctx, "o", newListing("Named", 1, 1, 1))
	require.NoError(t, err)

	_, err = svc.Update(ctx, h.ID, "o", domain.HotelPatch{Name: domain.Null[string]()})
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestOwnerScopedMutationsHideOtherOwners(t *testing.T) {
	svc := NewListingService(memory.New())
	ctx := context.Background()
	h, err := svc.Create(ctx, "owner-b", newListing("B's", 1, 1, 1))
	require.NoError(t, err)

	patch := domain.HotelPatch{Price: domain.Some(1.0)}
	_, errForeign := svc.Update(ctx, h.ID, "owner-a", patch)
	_, errMissing := svc.Update(ctx, "does-not-exist", "owner-a", patch)
	assert.ErrorIs(t, errForeign, domain.ErrNotFoundOrNotOwned)
	assert.ErrorIs(t, errMissing, domain.ErrNotFoundOrNotOwned)
	assert.Equal(t, errForeign.Error(), errMissing.Error())

	assert.ErrorIs(t, svc.Delete(ctx, h.ID, "owner-a"), domain.ErrNotFoundOrNotOwned)
	assert.ErrorIs(t, svc.Delete(ctx, "does-not-exist", "owner-a"), domain.ErrNotFoundOrNotOwned)

	still, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, still.Price)

	require.NoError(t, svc.Delete(ctx, h.ID, "owner-b"))
	_, err = svc.Get(ctx, h.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
