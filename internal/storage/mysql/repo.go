package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"hotel_mapping/internal/adapters/observability"
	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/geo"
)

// mysqlErrDuplicateEntry is ER_DUP_ENTRY.
const mysqlErrDuplicateEntry = 1062

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// observe records the duration and outcome of one store call.
func observe(op string, start time.Time, err error) {
	observability.ObserveStore("mysql", op, err, time.Since(start))
}

/********** users **********/

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (err error) {
	defer func(start time.Time) { observe("create_user", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, insertUserSQL,
		u.ID, u.Email, u.PasswordHash, u.Name, u.IsHotelOwner, u.CreatedAt.UTC())
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (u domain.User, err error) {
	defer func(start time.Time) { observe("get_user_by_email", start, err) }(time.Now())
	return scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (u domain.User, err error) {
	defer func(start time.Time) { observe("get_user_by_id", start, err) }(time.Now())
	return scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsHotelOwner, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

/********** hotels: write paths **********/

func (r *Repo) InsertHotel(ctx context.Context, h domain.Hotel) (err error) {
	defer func(start time.Time) { observe("insert_hotel", start, err) }(time.Now())

	loc, err := valJSON(h.Location)
	if err != nil {
		return err
	}
	amen, err := valJSON(nonNil(h.Amenities))
	if err != nil {
		return err
	}
	home, err := valJSON(nonNil(h.HomeOfficeAmenities))
	if err != nil {
		return err
	}
	imgs, err := valJSON(nonNil(h.Images))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertHotelSQL,
		h.ID,
		h.OwnerID,
		h.Name,
		valStr(h.Description),
		h.Price,
		loc,
		amen,
		home,
		valF64(h.Rating),
		imgs,
		valStr(h.BookingURL),
		h.Address,
		valStr(h.Phone),
		valStr(h.Email),
		h.CreatedAt.UTC(),
	)
	return err
}

// UpdateHotel writes only the columns present in p. Columns are set individually so
// concurrent patches touching different fields do not overwrite each other.
func (r *Repo) UpdateHotel(ctx context.Context, id, ownerID string, p domain.HotelPatch) (err error) {
	defer func(start time.Time) { observe("update_hotel", start, err) }(time.Now())

	sets, args, err := patchAssignments(p)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, ownerID)
	// affected rows is 0 both for "no match" and "no change", so it is not consulted here;
	// callers check ownership with GetOwnedHotel.
	_, err = r.db.ExecContext(ctx, updateHotelPrefix+strings.Join(sets, ", ")+updateHotelWhere, args...)
	return err
}

func patchAssignments(p domain.HotelPatch) ([]string, []any, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	nullable := func(col string, o domain.Optional[string]) {
		if !o.Set {
			return
		}
		if o.Null {
			add(col, nil)
			return
		}
		add(col, o.Value)
	}
	list := func(col string, o domain.Optional[[]string]) error {
		if !o.Set {
			return nil
		}
		v, err := valJSON(nonNil(o.Value))
		if err != nil {
			return err
		}
		add(col, v)
		return nil
	}

	if p.Name.Present() {
		add("name", p.Name.Value)
	}
	nullable("description", p.Description)
	if p.Price.Present() {
		add("price", p.Price.Value)
	}
	if p.MovesLocation() {
		loc, err := valJSON(domain.NewPoint(p.Latitude.Value, p.Longitude.Value))
		if err != nil {
			return nil, nil, err
		}
		add("location", loc)
	}
	if err := list("amenities", p.Amenities); err != nil {
		return nil, nil, err
	}
	if err := list("home_office_amenities", p.HomeOfficeAmenities); err != nil {
		return nil, nil, err
	}
	if p.Rating.Set {
		if p.Rating.Null {
			add("rating", nil)
		} else {
			add("rating", p.Rating.Value)
		}
	}
	if err := list("images", p.Images); err != nil {
		return nil, nil, err
	}
	nullable("booking_url", p.BookingURL)
	if p.Address.Present() {
		add("address", p.Address.Value)
	}
	nullable("phone", p.Phone)
	nullable("email", p.Email)
	return sets, args, nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id, ownerID string) (err error) {
	defer func(start time.Time) { observe("delete_hotel", start, err) }(time.Now())
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFoundOrNotOwned
	}
	return nil
}

/********** hotels: read paths **********/

func (r *Repo) GetHotel(ctx context.Context, id string) (h domain.Hotel, err error) {
	defer func(start time.Time) { observe("get_hotel", start, err) }(time.Now())
	h, err = scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) GetOwnedHotel(ctx context.Context, id, ownerID string) (h domain.Hotel, err error) {
	defer func(start time.Time) { observe("get_owned_hotel", start, err) }(time.Now())
	h, err = scanHotel(r.db.QueryRowContext(ctx, getOwnedHotelSQL, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFoundOrNotOwned
	}
	return h, err
}

func (r *Repo) ListHotelsByOwner(ctx context.Context, ownerID string) (hs []domain.Hotel, err error) {
	defer func(start time.Time) { observe("list_hotels_by_owner", start, err) }(time.Now())
	return r.queryHotels(ctx, listHotelsByOwnerSQL, ownerID)
}

func (r *Repo) ListHotels(ctx context.Context, limit int) (hs []domain.Hotel, err error) {
	defer func(start time.Time) { observe("list_hotels", start, err) }(time.Now())
	return r.queryHotels(ctx, listHotelsSQL, limit)
}

func (r *Repo) HotelsWithin(ctx context.Context, box geo.BoundingBox) (hs []domain.Hotel, err error) {
	defer func(start time.Time) { observe("hotels_within", start, err) }(time.Now())
	q := hotelsWithinSQL
	if box.WrapsLon {
		q = hotelsWithinWrappedSQL
	}
	return r.queryHotels(ctx, q, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
}

func (r *Repo) queryHotels(ctx context.Context, query string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var (
		desc, bookingURL, phone, email sql.NullString
		rating                         sql.NullFloat64
		locJSON, amenJSON, homeJSON    []byte
		imgsJSON                       []byte
	)
	if err := s.Scan(
		&h.ID,
		&h.OwnerID,
		&h.Name,
		&desc,
		&h.Price,
		&locJSON,
		&amenJSON,
		&homeJSON,
		&rating,
		&imgsJSON,
		&bookingURL,
		&h.Address,
		&phone,
		&email,
		&h.CreatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}

	if err := json.Unmarshal(locJSON, &h.Location); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %s: decode location: %w", h.ID, err)
	}
	if err := unmarshalList(amenJSON, &h.Amenities); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %s: decode amenities: %w", h.ID, err)
	}
	if err := unmarshalList(homeJSON, &h.HomeOfficeAmenities); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %s: decode home_office_amenities: %w", h.ID, err)
	}
	if err := unmarshalList(imgsJSON, &h.Images); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %s: decode images: %w", h.ID, err)
	}
	h.Description = nullStr(desc)
	h.BookingURL = nullStr(bookingURL)
	h.Phone = nullStr(phone)
	h.Email = nullStr(email)
	if rating.Valid {
		f := rating.Float64
		h.Rating = &f
	}
	h.CreatedAt = h.CreatedAt.UTC()
	return h, nil
}

func unmarshalList(b []byte, dst *[]string) error {
	if len(b) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []string{}
	}
	return nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
