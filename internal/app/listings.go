package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hotel_mapping/internal/domain"
)

type ListingService struct {
	repo  domain.HotelRepository
	now   func() time.Time
	newID func() string
}

func NewListingService(r domain.HotelRepository) *ListingService {
	return &ListingService{repo: r, now: time.Now, newID: uuid.NewString}
}

func (s *ListingService) Create(ctx context.Context, ownerID string, in domain.NewHotel) (domain.Hotel, error) {
	if err := in.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	h := in.Hotel(s.newID(), ownerID, s.now().UTC())
	if err := s.repo.InsertHotel(ctx, h); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (domain.Hotel, error) {
	return s.repo.GetHotel(ctx, id)
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Hotel, error) {
	return s.repo.ListHotelsByOwner(ctx, ownerID)
}

// ListAll is the public browse list; never more than MaxBrowseLimit entries.
func (s *ListingService) ListAll(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.repo.ListHotels(ctx, domain.MaxBrowseLimit)
	if err != nil {
		return nil, err
	}
	if len(hs) > domain.MaxBrowseLimit {
		hs = hs[:domain.MaxBrowseLimit]
	}
	return hs, nil
}

// Update merges only the supplied fields. Missing listings and listings owned by
// someone else both yield ErrNotFoundOrNotOwned.
func (s *ListingService) Update(ctx context.Context, id, ownerID string, p domain.HotelPatch) (domain.Hotel, error) {
	if err := p.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	if _, err := s.repo.GetOwnedHotel(ctx, id, ownerID); err != nil {
		return domain.Hotel{}, err
	}
	if !p.IsEmpty() {
		if err := s.repo.UpdateHotel(ctx, id, ownerID, p); err != nil {
			return domain.Hotel{}, err
		}
	}
	return s.repo.GetOwnedHotel(ctx, id, ownerID)
}

func (s *ListingService) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.DeleteHotel(ctx, id, ownerID)
}
