// Package expense holds the pure business rules for expense groups:
// participant resolution, group identifier generation, and balance
// calculation over split lines.
package expense

import (
	"context"
	"fmt"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
	"github.com/chiragjethva03/sarvam-backend/internal/phone"
)

// PhoneDirectory looks up registered users by canonical phone number.
// This narrow interface keeps the resolver independent of the storage
// implementation.
type PhoneDirectory interface {
	// UsersByPhones returns the users whose phone matches one of the given
	// canonical numbers, keyed by that number. Phones with no registered
	// user are simply absent from the result.
	UsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error)
}

// ResolveParticipants computes the authoritative participant-id set for a
// group creation request: the creator, every member carrying an explicit user
// id, and every phone-only member whose number matches a registered user.
//
// Phone-only members are resolved with a single batched lookup. Phones that
// match no user are dropped silently: they represent participants who have
// not registered yet, not an error. A failed lookup aborts the whole
// resolution.
func ResolveParticipants(ctx context.Context, dir PhoneDirectory, creatorID string, members []models.Member) (map[string]struct{}, error) {
	if creatorID == "" {
		return nil, models.Validationf("creator id is required")
	}

	participants := map[string]struct{}{creatorID: {}}

	var pending []string
	seen := make(map[string]struct{})
	for _, m := range members {
		if m.UserID != "" {
			participants[m.UserID] = struct{}{}
			continue
		}
		p := phone.Canonical(m.Phone)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pending = append(pending, p)
	}

	if len(pending) == 0 {
		return participants, nil
	}

	matched, err := dir.UsersByPhones(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members by phone: %w", err)
	}
	for _, u := range matched {
		participants[u.ID] = struct{}{}
	}

	return participants, nil
}
