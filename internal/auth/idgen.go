package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"recipebox/internal/domain"
)

// DefaultMaxIDAttempts bounds collision retries in IDGenerator.Generate.
const DefaultMaxIDAttempts = 16

// ErrIDSpaceExhausted means every candidate collided with an existing user.
var ErrIDSpaceExhausted = errors.New("could not generate a free user id")

// IDChecker reports whether a user id is already taken.
type IDChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// IDGenerator produces random numeric user ids that are free in the store.
type IDGenerator struct {
	users       IDChecker
	length      int
	maxAttempts int
	random      io.Reader
}

func NewIDGenerator(users IDChecker) *IDGenerator {
	return &IDGenerator{
		users:       users,
		length:      domain.UserIDLength,
		maxAttempts: DefaultMaxIDAttempts,
		random:      rand.Reader,
	}
}

// Generate returns an id for which ExistsByID was false.
func (g *IDGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		id, err := g.candidate()
		if err != nil {
			return "", err
		}

		exists, err := g.users.ExistsByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check user id: %w", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, g.maxAttempts)
}

func (g *IDGenerator) candidate() (string, error) {
	ten := big.NewInt(10)
	digits := make([]byte, g.length)
	for i := range digits {
		n, err := rand.Int(g.random, ten)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
