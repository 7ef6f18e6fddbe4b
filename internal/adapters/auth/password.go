package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"boothsale/internal/domain"
)

type bcryptComparer struct {
	cost int
}

// NewBcryptComparer returns a PasswordComparer backed by bcrypt.
func NewBcryptComparer(cost int) domain.PasswordComparer {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptComparer{cost: cost}
}

func (h *bcryptComparer) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptComparer) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
