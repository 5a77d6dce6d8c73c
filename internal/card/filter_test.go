package card

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleCard() Card {
	return Card{
		ID:         "c1",
		Number:     "q7JZn5f0aBcDeFgH1+2/3w==",
		HolderID:   "h1",
		Expiration: time.Date(2027, time.March, 14, 0, 0, 0, 0, time.UTC),
		Status:     StatusActive,
		Balance:    decimal.NewFromInt(100),
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	if !(Filter{}).Matches(sampleCard()) {
		t.Fatalf("empty filter must not restrict")
	}
}

func TestFilterNumberSubstring(t *testing.T) {
	c := sampleCard()
	if !(Filter{Number: "Zn5f0"}).Matches(c) {
		t.Fatalf("expected substring match on encoded number")
	}
	if (Filter{Number: "nope"}).Matches(c) {
		t.Fatalf("expected substring mismatch")
	}
}

func TestFilterExpirationIgnoresTimeOfDay(t *testing.T) {
	c := sampleCard()
	noon := time.Date(2027, time.March, 14, 12, 30, 0, 0, time.UTC)
	if !(Filter{Expiration: &noon}).Matches(c) {
		t.Fatalf("expiration filter must compare calendar dates")
	}
	other := noon.AddDate(0, 0, 1)
	if (Filter{Expiration: &other}).Matches(c) {
		t.Fatalf("expected expiration mismatch")
	}
}

func TestFilterBalanceExact(t *testing.T) {
	c := sampleCard()
	same := decimal.RequireFromString("100.00")
	if !(Filter{Balance: &same}).Matches(c) {
		t.Fatalf("100 and 100.00 are the same amount")
	}
	other := decimal.NewFromInt(99)
	if (Filter{Balance: &other}).Matches(c) {
		t.Fatalf("expected balance mismatch")
	}
}

func TestFilterConjunction(t *testing.T) {
	c := sampleCard()
	active := StatusActive
	blocked := StatusBlocked
	if !(Filter{Number: "q7JZ", Status: &active}).Matches(c) {
		t.Fatalf("expected all set criteria to match")
	}
	if (Filter{Number: "q7JZ", Status: &blocked}).Matches(c) {
		t.Fatalf("one failing criterion must reject the card")
	}
}

func TestWindow(t *testing.T) {
	cards := []Card{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	got := window(cards, Page{Offset: 1, Limit: 2})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if got := window(cards, Page{Offset: 10}); got != nil {
		t.Fatalf("offset past the end must yield nothing, got %+v", got)
	}
	if got := window(cards, Page{}); len(got) != 4 {
		t.Fatalf("zero page must return everything, got %d", len(got))
	}
}
