package app

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"hotel_mapping/internal/domain"
)

/********** alias registry (single source of truth) **********/

var listingAliases = map[string][]string{
	"name":        {"name", "hotel_name", "title"},
	"description": {"description", "markdown_description", "summary"},
	"address":     {"address", "address_raw", "full_address", "address.line", "location.address"},
	"phone":       {"phone", "phone_number", "contact.phone"},
	"email":       {"email", "contact_email", "contact.email"},
	"booking_url": {"booking_url", "bookingUrl", "url", "links.booking"},
}

var (
	latPaths    = []string{"latitude", "lat", "location.lat", "location.latitude"}
	lonPaths    = []string{"longitude", "lon", "lng", "location.lon", "location.lng", "location.longitude"}
	pricePaths  = []string{"price", "price_per_night", "nightly_price", "rate.amount"}
	ratingPaths = []string{"rating", "score", "rating.value", "review_score"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
// Strings that parseDecimal cannot read unambiguously are treated as absent.
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			if f, ok := parseDecimal(v); ok {
				return &f
			}
		}
	}
	return nil
}

// parseDecimal accepts "89.99" and a decimal comma as in "89,99". Ambiguous grouping is
// rejected: a comma before exactly three digits ("1,200"), mixed separators, repeated commas.
func parseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		intPart, frac, _ := strings.Cut(s, ",")
		if strings.ContainsAny(frac, ",.") || strings.Contains(intPart, ".") || len(frac) == 0 || len(frac) == 3 {
			return 0, false
		}
		s = intPart + "." + frac
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					for _, key := range []string{"url", "src", "name"} {
						if u, ok := t[key].(string); ok && u != "" {
							out = append(out, u)
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// geoJSONCoords reads a {"type":"Point","coordinates":[lon, lat]} location.
func geoJSONCoords(m map[string]any) (lat, lon *float64) {
	raw, ok := lookupAny(m, "location.coordinates").([]any)
	if !ok || len(raw) != 2 {
		return nil, nil
	}
	x, okX := raw[0].(float64)
	y, okY := raw[1].(float64)
	if !okX || !okY {
		return nil, nil
	}
	return &y, &x
}

/********** listing mapper **********/

var (
	errMissingName     = errors.New("feed record has no name")
	errMissingLocation = errors.New("feed record has no coordinates")
	errMissingPrice    = errors.New("feed record has no price")
)

func mapFeedListing(p map[string]any) (domain.NewHotel, error) {
	name := firstNonEmptyAlias(p, listingAliases, "name")
	if name == nil {
		return domain.NewHotel{}, errMissingName
	}

	lat, lon := geoJSONCoords(p)
	if lat == nil || lon == nil {
		lat = getFloatFlexible(p, latPaths...)
		lon = getFloatFlexible(p, lonPaths...)
	}
	if lat == nil || lon == nil {
		return domain.NewHotel{}, errMissingLocation
	}

	price := getFloatFlexible(p, pricePaths...)
	if price == nil {
		return domain.NewHotel{}, errMissingPrice
	}

	return domain.NewHotel{
		Name:                *name,
		Description:         firstNonEmptyAlias(p, listingAliases, "description"),
		Price:               *price,
		Latitude:            *lat,
		Longitude:           *lon,
		Amenities:           firstSliceStrings(p, "amenities", "facilities"),
		HomeOfficeAmenities: firstSliceStrings(p, "home_office_amenities", "work_amenities", "workspace"),
		Rating:              getFloatFlexible(p, ratingPaths...),
		Images:              firstSliceStrings(p, "images", "photos"),
		BookingURL:          firstNonEmptyAlias(p, listingAliases, "booking_url"),
		Address:             deref(firstNonEmptyAlias(p, listingAliases, "address")),
		Phone:               firstNonEmptyAlias(p, listingAliases, "phone"),
		Email:               firstNonEmptyAlias(p, listingAliases, "email"),
	}, nil
}
