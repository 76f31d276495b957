package expense

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/chiragjethva03/sarvam-backend/internal/models"
)

const (
	// GroupIDPrefix starts every generated group identifier.
	GroupIDPrefix = "SarvamEx"

	// maxIDAttempts bounds the generate-and-check loop. The number space is
	// 9000 ids, so repeated collisions are a sign of exhaustion, not bad luck.
	maxIDAttempts = 10
)

// IDChecker answers whether a candidate group identifier is already taken.
type IDChecker interface {
	GroupIDExists(ctx context.Context, groupID string) (bool, error)
}

// GenerateGroupID produces an unused group identifier of the form
// "SarvamEx" followed by a 4-digit number. It retries on collision up to
// maxIDAttempts times and returns ErrConflict on exhaustion. A store error
// during the existence check aborts immediately rather than retrying.
func GenerateGroupID(ctx context.Context, checker IDChecker) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%d", GroupIDPrefix, 1000+rand.IntN(9000))

		exists, err := checker.GroupIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check group id %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", models.Conflictf("could not find a free group id in %d attempts", maxIDAttempts)
}
