package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// Optional distinguishes an omitted JSON key (Set=false) from an explicit null (Set, Null)
// and from a value. encoding/json only calls UnmarshalJSON for keys that are present.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true, Null: true} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// Present reports whether a non-null value was supplied.
func (o Optional[T]) Present() bool { return o.Set && !o.Null }

// HotelPatch is a partial update: only fields with Set=true are touched.
type HotelPatch struct {
	Name                Optional[string]   `json:"name"`
	Description         Optional[string]   `json:"description"`
	Price               Optional[float64]  `json:"price"`
	Latitude            Optional[float64]  `json:"latitude"`
	Longitude           Optional[float64]  `json:"longitude"`
	Amenities           Optional[[]string] `json:"amenities"`
	HomeOfficeAmenities Optional[[]string] `json:"home_office_amenities"`
	Rating              Optional[float64]  `json:"rating"`
	Images              Optional[[]string] `json:"images"`
	BookingURL          Optional[string]   `json:"booking_url"`
	Address             Optional[string]   `json:"address"`
	Phone               Optional[string]   `json:"phone"`
	Email               Optional[string]   `json:"email"`
}

// Validate rejects nulls on required fields and out-of-range values.
// A lone latitude or longitude is range-checked but otherwise ignored by Apply.
func (p HotelPatch) Validate() error {
	var fields []FieldError
	required := []struct {
		name string
		null bool
	}{
		{"name", p.Name.Set && p.Name.Null},
		{"price", p.Price.Set && p.Price.Null},
		{"address", p.Address.Set && p.Address.Null},
		{"latitude", p.Latitude.Set && p.Latitude.Null},
		{"longitude", p.Longitude.Set && p.Longitude.Null},
	}
	for _, r := range required {
		if r.null {
			fields = append(fields, FieldError{Field: r.name, Message: "cannot be null"})
		}
	}
	if p.Price.Present() && (math.IsNaN(p.Price.Value) || math.IsInf(p.Price.Value, 0) || p.Price.Value < 0) {
		fields = append(fields, FieldError{Field: "price", Message: "must be a non-negative number"})
	}
	if p.Latitude.Present() && (math.IsNaN(p.Latitude.Value) || p.Latitude.Value < -90 || p.Latitude.Value > 90) {
		fields = append(fields, FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if p.Longitude.Present() && (math.IsNaN(p.Longitude.Value) || p.Longitude.Value < -180 || p.Longitude.Value > 180) {
		fields = append(fields, FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// MovesLocation is true only when both coordinates are supplied.
func (p HotelPatch) MovesLocation() bool {
	return p.Latitude.Present() && p.Longitude.Present()
}

// IsEmpty reports a patch that changes nothing.
func (p HotelPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Price.Set && !p.MovesLocation() &&
		!p.Amenities.Set && !p.HomeOfficeAmenities.Set && !p.Rating.Set && !p.Images.Set &&
		!p.BookingURL.Set && !p.Address.Set && !p.Phone.Set && !p.Email.Set
}

// Apply merges the patch into h and returns the result; h itself is not modified.
func (p HotelPatch) Apply(h Hotel) Hotel {
	if p.Name.Present() {
		h.Name = p.Name.Value
	}
	applyNullable(&h.Description, p.Description)
	if p.Price.Present() {
		h.Price = p.Price.Value
	}
	if p.MovesLocation() {
		h.Location = NewPoint(p.Latitude.Value, p.Longitude.Value)
	}
	applyList(&h.Amenities, p.Amenities)
	applyList(&h.HomeOfficeAmenities, p.HomeOfficeAmenities)
	applyNullable(&h.Rating, p.Rating)
	applyList(&h.Images, p.Images)
	applyNullable(&h.BookingURL, p.BookingURL)
	if p.Address.Present() {
		h.Address = p.Address.Value
	}
	applyNullable(&h.Phone, p.Phone)
	applyNullable(&h.Email, p.Email)
	return h
}

func applyNullable[T any](dst **T, o Optional[T]) {
	switch {
	case !o.Set:
	case o.Null:
		*dst = nil
	default:
		v := o.Value
		*dst = &v
	}
}

func applyList(dst *[]string, o Optional[[]string]) {
	if !o.Set {
		return
	}
	if o.Null || o.Value == nil {
		*dst = []string{}
		return
	}
	*dst = append([]string{}, o.Value...)
}
