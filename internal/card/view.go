package card

import (
	"context"
	"fmt"
	"time"

	"github.com/cardvault/cardvault/internal/cardnum"
)

// assemble maps a stored card into its external view. The stored token is
// decoded and masked; if the token is not decodable the assembly fails
// closed rather than fabricating a display value.
func (s *Service) assemble(c Card, username string) (View, error) {
	raw, err := s.codec.Decode(c.Number)
	if err != nil {
		return View{}, fmt.Errorf("card %s: %w", c.ID, err)
	}
	masked, err := cardnum.Mask(raw)
	if err != nil {
		return View{}, fmt.Errorf("card %s: %w", c.ID, err)
	}
	return View{
		ID:           c.ID,
		MaskedNumber: masked,
		Holder:       username,
		Expiration:   c.Expiration.Format(time.DateOnly),
		Status:       c.Status,
		Balance:      c.Balance,
	}, nil
}

// assembleAll resolves owner usernames once per holder and maps every card.
func (s *Service) assembleAll(ctx context.Context, cards []Card) ([]View, error) {
	usernames := make(map[string]string)
	views := make([]View, 0, len(cards))
	for _, c := range cards {
		username, ok := usernames[c.HolderID]
		if !ok {
			h, err := s.holders.Get(ctx, c.HolderID)
			if err != nil {
				return nil, fmt.Errorf("card %s owner: %w", c.ID, err)
			}
			username = h.Username
			usernames[c.HolderID] = username
		}
		v, err := s.assemble(c, username)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
