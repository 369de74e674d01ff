package httpserver

import (
	"hotel_mapping/internal/domain"
)

// ---- requests ----

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// createHotelRequest uses pointers for required numbers so a missing key is told apart from 0.
type createHotelRequest struct {
	Name                string   `json:"name" validate:"required"`
	Description         *string  `json:"description"`
	Price               *float64 `json:"price" validate:"required,gte=0"`
	Latitude            *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude           *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Amenities           []string `json:"amenities"`
	HomeOfficeAmenities []string `json:"home_office_amenities"`
	Rating              *float64 `json:"rating"`
	Images              []string `json:"images"`
	BookingURL          *string  `json:"booking_url"`
	Address             string   `json:"address" validate:"required"`
	Phone               *string  `json:"phone"`
	Email               *string  `json:"email"`
}

func (r createHotelRequest) toDomain() domain.NewHotel {
	return domain.NewHotel{
		Name:                r.Name,
		Description:         r.Description,
		Price:               *r.Price,
		Latitude:            *r.Latitude,
		Longitude:           *r.Longitude,
		Amenities:           r.Amenities,
		HomeOfficeAmenities: r.HomeOfficeAmenities,
		Rating:              r.Rating,
		Images:              r.Images,
		BookingURL:          r.BookingURL,
		Address:             r.Address,
		Phone:               r.Phone,
		Email:               r.Email,
	}
}

// ---- responses ----

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type meResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsHotelOwner bool   `json:"is_hotel_owner"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// hotelResponse flattens the stored point back into latitude and longitude.
type hotelResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	Price               float64  `json:"price"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	Amenities           []string `json:"amenities"`
	HomeOfficeAmenities []string `json:"home_office_amenities"`
	Rating              *float64 `json:"rating"`
	Images              []string `json:"images"`
	BookingURL          *string  `json:"booking_url"`
	Address             string   `json:"address"`
	Phone               *string  `json:"phone"`
	Email               *string  `json:"email"`
	Distance            *float64 `json:"distance,omitempty"` // meters, search only
}

func toHotelResponse(h domain.Hotel) hotelResponse {
	return hotelResponse{
		ID:                  h.ID,
		Name:                h.Name,
		Description:         h.Description,
		Price:               h.Price,
		Latitude:            h.Location.Lat(),
		Longitude:           h.Location.Lon(),
		Amenities:           orEmpty(h.Amenities),
		HomeOfficeAmenities: orEmpty(h.HomeOfficeAmenities),
		Rating:              h.Rating,
		Images:              orEmpty(h.Images),
		BookingURL:          h.BookingURL,
		Address:             h.Address,
		Phone:               h.Phone,
		Email:               h.Email,
	}
}

func toHotelResponses(hs []domain.Hotel) []hotelResponse {
	out := make([]hotelResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHotelResponse(h))
	}
	return out
}

func toMatchResponses(ms []domain.HotelMatch) []hotelResponse {
	out := make([]hotelResponse, 0, len(ms))
	for _, m := range ms {
		r := toHotelResponse(m.Hotel)
		d := m.DistanceMeters
		r.Distance = &d
		out = append(out, r)
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
