package domain

import (
	"math"
	"strings"
	"time"
)

// PointType is the only geometry discriminator stored for a listing.
const PointType = "Point"

// Point is stored exactly as {"type":"Point","coordinates":[lon, lat]}.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [longitude, latitude]
}

func NewPoint(lat, lon float64) Point {
	return Point{Type: PointType, Coordinates: [2]float64{lon, lat}}
}

func (p Point) Lon() float64 { return p.Coordinates[0] }
func (p Point) Lat() float64 { return p.Coordinates[1] }

// Validate reports out-of-range or non-finite coordinates.
func (p Point) Validate() error {
	return validateCoords(p.Lat(), p.Lon())
}

type Hotel struct {
	ID                  string
	OwnerID             string
	Name                string
	Description         *string
	Price               float64
	Location            Point
	Amenities           []string
	HomeOfficeAmenities []string
	Rating              *float64
	Images              []string
	BookingURL          *string
	Address             string
	Phone               *string
	Email               *string
	CreatedAt           time.Time
}

// NewHotel is the owner-supplied part of a listing; id, owner and timestamps are assigned on create.
type NewHotel struct {
	Name                string
	Description         *string
	Price               float64
	Latitude            float64
	Longitude           float64
	Amenities           []string
	HomeOfficeAmenities []string
	Rating              *float64
	Images              []string
	BookingURL          *string
	Address             string
	Phone               *string
	Email               *string
}

func (n NewHotel) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(n.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(n.Address) == "" {
		fields = append(fields, FieldError{Field: "address", Message: "is required"})
	}
	if math.IsNaN(n.Price) || math.IsInf(n.Price, 0) || n.Price < 0 {
		fields = append(fields, FieldError{Field: "price", Message: "must be a non-negative number"})
	}
	if err := validateCoords(n.Latitude, n.Longitude); err != nil {
		fields = append(fields, err.(*ValidationError).Fields...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Hotel builds the stored document. Nil tag lists become empty so they persist as [].
func (n NewHotel) Hotel(id, ownerID string, createdAt time.Time) Hotel {
	return Hotel{
		ID:                  id,
		OwnerID:             ownerID,
		Name:                n.Name,
		Description:         n.Description,
		Price:               n.Price,
		Location:            NewPoint(n.Latitude, n.Longitude),
		Amenities:           nonNil(n.Amenities),
		HomeOfficeAmenities: nonNil(n.HomeOfficeAmenities),
		Rating:              n.Rating,
		Images:              nonNil(n.Images),
		BookingURL:          n.BookingURL,
		Address:             n.Address,
		Phone:               n.Phone,
		Email:               n.Email,
		CreatedAt:           createdAt,
	}
}

// HotelMatch is a search hit; DistanceMeters is computed, never persisted.
type HotelMatch struct {
	Hotel
	DistanceMeters float64
}

func validateCoords(lat, lon float64) error {
	var fields []FieldError
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		fields = append(fields, FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		fields = append(fields, FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
