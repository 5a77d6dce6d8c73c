package card

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardvault/cardvault/internal/cardnum"
	"github.com/cardvault/cardvault/internal/holder"
	"github.com/cardvault/cardvault/internal/notification"
)

// expiryYears is how far from issuance a new card expires.
const expiryYears = 3

// maxIssueAttempts bounds the generate-encode-check loop. Collisions in a
// 16-digit space are practically impossible, so hitting the ceiling means
// the generator is broken or the space is saturated.
const maxIssueAttempts = 10

// Service owns the card ledger: issuance, administrative updates, filtered
// listing, and the ownership-checked transfer/block/balance operations.
// Every invariant lives here or in the repository's atomic transfer; no
// other component mutates balance or status.
type Service struct {
	repo     Repository
	holders  holder.Repository
	codec    *cardnum.Codec
	gen      *cardnum.Generator
	notifier notification.Notifier
}

// NewService constructs the card service.
func NewService(repo Repository, holders holder.Repository, codec *cardnum.Codec, gen *cardnum.Generator, notifier notification.Notifier) *Service {
	return &Service{repo: repo, holders: holders, codec: codec, gen: gen, notifier: notifier}
}

// Issue creates a card for the holder: a fresh unique number, status
// active, zero balance, expiration three years out.
func (s *Service) Issue(ctx context.Context, holderID string) (View, error) {
	h, err := s.holders.Get(ctx, holderID)
	if err != nil {
		return View{}, err
	}

	token, err := s.uniqueToken(ctx)
	if err != nil {
		return View{}, err
	}

	now := time.Now().UTC()
	c := Card{
		ID:         uuid.New().String(),
		Number:     token,
		HolderID:   h.ID,
		Expiration: dateOnly(now).AddDate(expiryYears, 0, 0),
		Status:     StatusActive,
		Balance:    decimal.Zero,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return View{}, err
	}
	return s.assemble(c, h.Username)
}

// uniqueToken runs the generate-encode-check loop until the encoded token
// is unused in the store.
func (s *Service) uniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		raw, err := s.gen.Generate()
		if err != nil {
			return "", err
		}
		token, err := s.codec.Encode(raw)
		if err != nil {
			return "", err
		}
		exists, err := s.repo.ExistsByNumber(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return "", ErrNumberExhausted
}

// DeleteByID removes a card unconditionally.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteAll removes every card.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// UpdateInput carries the optional fields of an administrative update. Nil
// means leave unchanged.
type UpdateInput struct {
	HolderID   *string
	Expiration *time.Time
	Status     *Status
	Balance    *decimal.Decimal
}

// Update applies an administrative update. Expiration may only be extended
// and balance may not decrease; every field is validated before any field
// is written, so a rejected update leaves the card untouched.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (View, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}

	owner, err := s.holders.Get(ctx, c.HolderID)
	if err != nil {
		return View{}, err
	}
	if input.HolderID != nil {
		owner, err = s.holders.Get(ctx, *input.HolderID)
		if err != nil {
			return View{}, err
		}
	}
	if input.Expiration != nil && dateOnly(*input.Expiration).Before(c.Expiration) {
		return View{}, fmt.Errorf("%w: expiration may only be extended", ErrInvalidUpdate)
	}
	if input.Balance != nil && input.Balance.LessThan(c.Balance) {
		return View{}, fmt.Errorf("%w: balance may not decrease", ErrInvalidUpdate)
	}

	c.HolderID = owner.ID
	if input.Expiration != nil {
		c.Expiration = dateOnly(*input.Expiration)
	}
	if input.Status != nil {
		c.Status = *input.Status
	}
	if input.Balance != nil {
		c.Balance = *input.Balance
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return View{}, err
	}
	return s.assemble(c, owner.Username)
}

// GetByID returns a card view or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (View, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	owner, err := s.holders.Get(ctx, c.HolderID)
	if err != nil {
		return View{}, err
	}
	return s.assemble(c, owner.Username)
}

// List returns the filtered page of card views across all holders.
func (s *Service) List(ctx context.Context, f Filter, page Page) ([]View, error) {
	cards, err := s.repo.List(ctx, f, page)
	if err != nil {
		return nil, err
	}
	return s.assembleAll(ctx, cards)
}

// ListByHolder returns the holder's own cards matching the filter. The
// ownership restriction is ANDed in by the store and cannot be bypassed by
// filter input.
func (s *Service) ListByHolder(ctx context.Context, username string, f Filter, page Page) ([]View, error) {
	h, err := s.holders.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	cards, err := s.repo.ListByHolder(ctx, h.ID, f, page)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(cards))
	for _, c := range cards {
		v, err := s.assemble(c, h.Username)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Transfer moves amount between two cards owned by the caller. The debit
// and credit are applied by the store as one atomic unit; the store
// re-validates balance and status under its locks, so concurrent transfers
// over the same cards cannot overdraw.
func (s *Service) Transfer(ctx context.Context, callerUsername, fromID, toID string, amount decimal.Decimal) error {
	if fromID == toID {
		return fmt.Errorf("%w: source and destination are the same card", ErrInvalidTransfer)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	}

	caller, err := s.holders.GetByUsername(ctx, callerUsername)
	if err != nil {
		return err
	}
	from, err := s.repo.Get(ctx, fromID)
	if err != nil {
		return err
	}
	to, err := s.repo.Get(ctx, toID)
	if err != nil {
		return err
	}
	if from.HolderID != caller.ID || to.HolderID != caller.ID {
		return ErrPermissionDenied
	}
	if from.Status != StatusActive || to.Status != StatusActive {
		return ErrInactiveCard
	}

	if _, _, err := s.repo.Transfer(ctx, fromID, toID, amount); err != nil {
		return err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransfer,
			Destination: caller.Username,
			Body:        fmt.Sprintf("Transferred %s from card %s to card %s", amount.String(), fromID, toID),
		})
	}
	return nil
}

// Block sets the caller's card to blocked. Blocking an already blocked card
// is a no-op success.
func (s *Service) Block(ctx context.Context, callerUsername, id string) error {
	caller, err := s.holders.GetByUsername(ctx, callerUsername)
	if err != nil {
		return err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.HolderID != caller.ID {
		return ErrPermissionDenied
	}
	if c.Status == StatusBlocked {
		return nil
	}

	c.Status = StatusBlocked
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBlocked,
			Destination: caller.Username,
			Body:        fmt.Sprintf("Card %s was blocked", id),
		})
	}
	return nil
}

// GetBalance returns the current balance of the caller's card.
func (s *Service) GetBalance(ctx context.Context, callerUsername, id string) (decimal.Decimal, error) {
	caller, err := s.holders.GetByUsername(ctx, callerUsername)
	if err != nil {
		return decimal.Decimal{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if c.HolderID != caller.ID {
		return decimal.Decimal{}, ErrPermissionDenied
	}
	return c.Balance, nil
}
