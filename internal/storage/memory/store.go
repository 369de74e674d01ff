// Package memory is an in-process implementation of the user and hotel repositories.
// It backs STORAGE_DRIVER=memory for local runs and the service and API tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/geo"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User // by id
	byEmail map[string]string      // email -> id
	hotels  map[string]domain.Hotel
	order   []string // insertion order, the "store default" for ListHotels
}

func New() *Store {
	return &Store{
		users:   map[string]domain.User{},
		byEmail: map[string]string{},
		hotels:  map[string]domain.Hotel{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

/********** users **********/

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// DeleteUser exists for tests that need a token whose subject has disappeared.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.users, id)
	}
}

/********** hotels **********/

func (s *Store) InsertHotel(ctx context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		s.order = append(s.order, h.ID)
	}
	s.hotels[h.ID] = copyHotel(h)
	return nil
}

func (s *Store) UpdateHotel(ctx context.Context, id, ownerID string, p domain.HotelPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok || h.OwnerID != ownerID {
		return domain.ErrNotFoundOrNotOwned
	}
	s.hotels[id] = copyHotel(p.Apply(h))
	return nil
}

func (s *Store) DeleteHotel(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok || h.OwnerID != ownerID {
		return domain.ErrNotFoundOrNotOwned
	}
	delete(s.hotels, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return copyHotel(h), nil
}

func (s *Store) GetOwnedHotel(ctx context.Context, id, ownerID string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok || h.OwnerID != ownerID {
		return domain.Hotel{}, domain.ErrNotFoundOrNotOwned
	}
	return copyHotel(h), nil
}

func (s *Store) ListHotelsByOwner(ctx context.Context, ownerID string) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Hotel{}
	for _, id := range s.order {
		if h := s.hotels[id]; h.OwnerID == ownerID {
			out = append(out, copyHotel(h))
		}
	}
	return out, nil
}

func (s *Store) ListHotels(ctx context.Context, limit int) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Hotel, 0, n)
	for _, id := range s.order[:n] {
		out = append(out, copyHotel(s.hotels[id]))
	}
	return out, nil
}

func (s *Store) HotelsWithin(ctx context.Context, box geo.BoundingBox) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Hotel{}
	for _, h := range s.hotels {
		if box.Contains(h.Location.Lat(), h.Location.Lon()) {
			out = append(out, copyHotel(h))
		}
	}
	// map iteration is random; keep results deterministic for callers
	slices.SortFunc(out, func(a, b domain.Hotel) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// copyHotel avoids aliasing slices and pointers between the store and callers.
func copyHotel(h domain.Hotel) domain.Hotel {
	h.Amenities = append([]string{}, h.Amenities...)
	h.HomeOfficeAmenities = append([]string{}, h.HomeOfficeAmenities...)
	h.Images = append([]string{}, h.Images...)
	h.Description = copyPtr(h.Description)
	h.Rating = copyPtr(h.Rating)
	h.BookingURL = copyPtr(h.BookingURL)
	h.Phone = copyPtr(h.Phone)
	h.Email = copyPtr(h.Email)
	return h
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
