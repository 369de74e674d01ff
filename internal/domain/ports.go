package domain

import (
	"context"
	"time"

	"hotel_mapping/internal/geo"
)

type UserRepository interface {
	// CreateUser returns ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
}

type HotelRepository interface {
	// Write paths
	InsertHotel(ctx context.Context, h Hotel) error
	// UpdateHotel and DeleteHotel return ErrNotFoundOrNotOwned when no listing matches both id and owner.
	UpdateHotel(ctx context.Context, id, ownerID string, p HotelPatch) error
	DeleteHotel(ctx context.Context, id, ownerID string) error

	// Read paths
	GetHotel(ctx context.Context, id string) (Hotel, error)
	GetOwnedHotel(ctx context.Context, id, ownerID string) (Hotel, error)
	ListHotelsByOwner(ctx context.Context, ownerID string) ([]Hotel, error)
	ListHotels(ctx context.Context, limit int) ([]Hotel, error)
	// HotelsWithin is a coarse prefilter; callers compute exact distances.
	HotelsWithin(ctx context.Context, box geo.BoundingBox) ([]Hotel, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	// Verify returns ErrInvalidToken or ErrExpiredToken on failure.
	Verify(token string) (userID string, err error)
}

// ListingFeed is an external source of loosely-typed listing records.
type ListingFeed interface {
	GetListings(ctx context.Context) ([]map[string]any, error)
}

// Read models & queries

type SearchQuery struct {
	Center              Point
	RadiusMeters        float64
	MinPrice            *float64
	MaxPrice            *float64
	Amenities           []string
	HomeOfficeAmenities []string
	MinRating           *float64
}

// DefaultSearchRadiusMeters applies when the caller gives no radius.
const DefaultSearchRadiusMeters = 50_000

// MaxBrowseLimit caps the unfiltered public listing.
const MaxBrowseLimit = 100
