package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel_mapping/internal/domain"
)

type AccountService struct {
	users  domain.UserRepository
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
	now    func() time.Time

	// dummy is compared against when an email is unknown so that login failures for
	// missing accounts cost the same hashing work as wrong passwords.
	dummyOnce sync.Once
	dummy     string
}

func NewAccountService(u domain.UserRepository, h domain.PasswordHasher, t domain.TokenIssuer) *AccountService {
	return &AccountService{users: u, hasher: h, tokens: t, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	var fields []domain.FieldError
	if strings.TrimSpace(email) == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "is required"})
	}
	switch {
	case password == "":
		fields = append(fields, domain.FieldError{Field: "password", Message: "is required"})
	case len(password) > domain.MaxPasswordBytes:
		fields = append(fields, domain.FieldError{
			Field: "password", Message: fmt.Sprintf("must be at most %d bytes", domain.MaxPasswordBytes),
		})
	}
	if strings.TrimSpace(name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	}
	if len(fields) > 0 {
		return domain.User{}, &domain.ValidationError{Fields: fields}
	}

	// cheap pre-check; the unique index still decides under concurrency
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsHotelOwner: true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Authenticate fails with ErrInvalidCredentials whether the email is unknown or the password wrong.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		_ = s.hasher.Compare(s.dummyHash(), password)
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) FindByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// IssueToken signs a session token for u.
func (s *AccountService) IssueToken(u domain.User) (string, time.Time, error) {
	return s.tokens.Issue(u.ID)
}

// Authorize verifies a bearer token and re-resolves its subject.
func (s *AccountService) Authorize(ctx context.Context, token string) (domain.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("resolve token subject: %w", err)
	}
	return u, nil
}

func (s *AccountService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummy
}
