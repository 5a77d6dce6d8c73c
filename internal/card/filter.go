package card

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Filter is a sparse set of optional criteria over card attributes. Unset
// fields contribute no restriction; set fields are combined with AND. The
// number criterion matches a substring of the encoded token, mirroring what
// the store holds at rest.
type Filter struct {
	Number     string
	Expiration *time.Time
	Status     *Status
	Balance    *decimal.Decimal
}

// Matches evaluates the filter against a single card. Used by the in-memory
// repository; the Postgres repository translates the same criteria to SQL.
func (f Filter) Matches(c Card) bool {
	if f.Number != "" && !strings.Contains(c.Number, f.Number) {
		return false
	}
	if f.Expiration != nil && !dateOnly(*f.Expiration).Equal(dateOnly(c.Expiration)) {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Balance != nil && !c.Balance.Equal(*f.Balance) {
		return false
	}
	return true
}

// appendSQL adds one WHERE condition per set criterion, numbering
// placeholders after the ones already collected in args.
func (f Filter) appendSQL(conds *[]string, args *[]any) {
	if f.Number != "" {
		*args = append(*args, "%"+f.Number+"%")
		*conds = append(*conds, fmt.Sprintf("number LIKE $%d", len(*args)))
	}
	if f.Expiration != nil {
		*args = append(*args, dateOnly(*f.Expiration))
		*conds = append(*conds, fmt.Sprintf("expiration_date = $%d", len(*args)))
	}
	if f.Status != nil {
		*args = append(*args, string(*f.Status))
		*conds = append(*conds, fmt.Sprintf("status = $%d", len(*args)))
	}
	if f.Balance != nil {
		*args = append(*args, f.Balance.String())
		*conds = append(*conds, fmt.Sprintf("balance = $%d::numeric", len(*args)))
	}
}

// window applies the offset/limit page to an already filtered slice.
func window(cards []Card, page Page) []Card {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(cards) {
		return nil
	}
	cards = cards[page.Offset:]
	if page.Limit > 0 && page.Limit < len(cards) {
		cards = cards[:page.Limit]
	}
	return cards
}
