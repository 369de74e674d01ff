package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_mapping/internal/app"
	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/shared"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Accounts *app.AccountService
	Listings *app.ListingService
	Search   *app.SearchService
	Store    Pinger
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		// public reads
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/search", h.searchHotels)
		r.Get("/hotels/{id}", h.getHotel)

		// owner-scoped
		r.Group(func(r chi.Router) {
			r.Use(RequireUser(h.Accounts))
			r.Get("/auth/me", h.me)
			r.Post("/hotels", h.createHotel)
			r.Get("/hotels/my-hotels", h.myHotels)
			r.Put("/hotels/{id}", h.updateHotel)
			r.Delete("/hotels/{id}", h.deleteHotel)
		})
	})
}

// ---- response helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto transport statuses. Anything unrecognised is a 500
// and is logged with the request id; its text never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeProblemBody(w, problem{
			Type: "about:blank", Title: "Unprocessable Entity", Status: http.StatusUnprocessableEntity,
			Detail: vErr.Error(), Errors: vErr.Fields,
		})
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "Email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
	case errors.Is(err, domain.ErrExpiredToken):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Token expired")
	case errors.Is(err, domain.ErrInvalidToken):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
	case errors.Is(err, domain.ErrUserNotFound):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "User not found")
	case errors.Is(err, domain.ErrNotFoundOrNotOwned), errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "Hotel not found")
	default:
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "internal error")
	}
}

// decodeJSON reads one JSON document into dst. Syntax problems are reported as 400 here;
// type mismatches come back as a ValidationError for the caller to map to 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (ok bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeError(w, r, domain.NewValidationError(field, "must be of type "+typeErr.Type.String()))
	case errors.As(err, &maxErr):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "request body too large")
	case errors.Is(err, io.EOF):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "request body is required")
	default:
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
	}
	return false
}

// decodeAndValidate decodes the body and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if err := shared.ValidateStruct(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// ---- health ----

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health check: store unreachable")
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "store unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ---- auth ----

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.Accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeToken(w, r, u)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeToken(w, r, u)
}

func (h *Handlers) writeToken(w http.ResponseWriter, r *http.Request, u domain.User) {
	tok, _, err := h.Accounts.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, meResponse{ID: u.ID, Email: u.Email, Name: u.Name, IsHotelOwner: u.IsHotelOwner})
}

// ---- owner-scoped hotels ----

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var req createHotelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	hotel, err := h.Listings.Create(r.Context(), u.ID, req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotelResponse(hotel))
}

func (h *Handlers) myHotels(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	hs, err := h.Listings.ListByOwner(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponses(hs))
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	var patch domain.HotelPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	hotel, err := h.Listings.Update(r.Context(), chi.URLParam(r, "id"), u.ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	if err := h.Listings.Delete(r.Context(), chi.URLParam(r, "id"), u.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hotel deleted successfully"})
}

// ---- public reads ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Listings.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponses(hs))
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ms, err := h.Search.Search(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchResponses(ms))
}

// parseSearchQuery collects every malformed parameter into one ValidationError.
func parseSearchQuery(r *http.Request) (domain.SearchQuery, error) {
	v := r.URL.Query()
	var fields []domain.FieldError

	num := func(key string, required bool) *float64 {
		raw := strings.TrimSpace(v.Get(key))
		if raw == "" {
			if required {
				fields = append(fields, domain.FieldError{Field: key, Message: "is required"})
			}
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			fields = append(fields, domain.FieldError{Field: key, Message: "must be a finite number"})
			return nil
		}
		return &f
	}

	lat := num("latitude", true)
	lon := num("longitude", true)
	radius := num("radius", false)
	q := domain.SearchQuery{
		RadiusMeters:        domain.DefaultSearchRadiusMeters,
		MinPrice:            num("min_price", false),
		MaxPrice:            num("max_price", false),
		MinRating:           num("min_rating", false),
		Amenities:           splitList(v.Get("amenities")),
		HomeOfficeAmenities: splitList(v.Get("home_office_amenities")),
	}
	if len(fields) > 0 {
		return domain.SearchQuery{}, &domain.ValidationError{Fields: fields}
	}
	q.Center = domain.NewPoint(*lat, *lon)
	if radius != nil {
		q.RadiusMeters = *radius
	}
	return q, nil
}

// splitList splits a comma-separated tag list, trimming entries and dropping empty ones.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
