package card

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status captures card usability. Only active cards may participate in
// transfers; any other transition goes through the administrative update.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// ParseStatus validates a status value coming from the outside.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusBlocked:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown card status %q", s)
	}
}

// Card is the stored form of a payment card. Number holds the encoded
// token only; the raw 16-digit number is never persisted or logged.
type Card struct {
	ID         string
	Number     string
	HolderID   string
	Expiration time.Time
	Status     Status
	Balance    decimal.Decimal
	CreatedAt  time.Time
}

// View is the externally visible representation of a card. The number is
// masked; neither the raw nor the encoded form ever appears here.
type View struct {
	ID           string          `json:"id"`
	MaskedNumber string          `json:"masked_number"`
	Holder       string          `json:"holder"`
	Expiration   string          `json:"expiration"`
	Status       Status          `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
}

// Page is an offset/limit window applied after filtering.
type Page struct {
	Offset int
	Limit  int
}

// dateOnly truncates a timestamp to its UTC calendar date. Expirations are
// dates; comparing them at finer granularity invites off-by-hours bugs.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
