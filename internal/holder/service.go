package holder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages holder lifecycle and role registration.
type Service struct {
	repo Repository
}

// NewService creates a holder service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to register a holder. Role names not
// previously registered via AddRole are dropped silently.
type CreateInput struct {
	Username string
	Password string
	Roles    []string
}

// Create registers a holder with a hashed credential. Duplicate usernames
// fail with ErrExists.
func (s *Service) Create(ctx context.Context, input CreateInput) (View, error) {
	if input.Username == "" {
		return View{}, errors.New("username is required")
	}
	if len(input.Password) < 4 {
		return View{}, errors.New("password must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return View{}, err
	}
	roles, err := s.repo.FilterRoles(ctx, input.Roles)
	if err != nil {
		return View{}, err
	}

	h := Holder{
		ID:           uuid.New().String(),
		Username:     input.Username,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return View{}, err
	}
	return h.view(), nil
}

// UpdateInput carries the optional fields of an administrative holder
// update. Nil means leave unchanged.
type UpdateInput struct {
	Password *string
	Roles    []string
}

// Update rehashes the credential and/or reassigns roles.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (View, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return View{}, err
		}
		h.PasswordHash = hash
	}
	if input.Roles != nil {
		roles, err := s.repo.FilterRoles(ctx, input.Roles)
		if err != nil {
			return View{}, err
		}
		h.Roles = roles
	}
	if err := s.repo.Update(ctx, h); err != nil {
		return View{}, err
	}
	return h.view(), nil
}

// GetByID returns a holder view or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (View, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return h.view(), nil
}

// GetByUsername returns a holder view or ErrNotFound.
func (s *Service) GetByUsername(ctx context.Context, username string) (View, error) {
	h, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return View{}, err
	}
	return h.view(), nil
}

// List returns the filtered page of holder views.
func (s *Service) List(ctx context.Context, f Filter, page Page) ([]View, error) {
	holders, err := s.repo.List(ctx, f, page)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(holders))
	for _, h := range holders {
		views = append(views, h.view())
	}
	return views, nil
}

// DeleteByID removes a holder.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteAll removes every holder.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// AddRole registers a role name; duplicates fail with ErrRoleExists.
func (s *Service) AddRole(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("role name is required")
	}
	return s.repo.CreateRole(ctx, name)
}

// Authenticate verifies a username/password pair and returns the holder.
// Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Holder, error) {
	h, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Holder{}, ErrBadCredentials
		}
		return Holder{}, err
	}
	if err := bcrypt.CompareHashAndPassword(h.PasswordHash, []byte(password)); err != nil {
		return Holder{}, ErrBadCredentials
	}
	return h, nil
}

func (h Holder) view() View {
	roles := h.Roles
	if roles == nil {
		roles = []string{}
	}
	return View{ID: h.ID, Username: h.Username, Roles: roles}
}
