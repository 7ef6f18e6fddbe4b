package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boothsale/internal/domain"
)

const tokenExpiry = 12 * time.Hour

type authService struct {
	eventRepo          domain.EventRepository
	issuer             domain.TokenIssuer
	hasher             domain.PasswordComparer
	adminPasswordHash  string
	vendorPasswordHash string
	contextTimeout     time.Duration
}

// NewAuthService returns the console login service. There are no user
// accounts: the admin and global vendor passwords come from configuration,
// and an event may additionally carry its own vendor password.
func NewAuthService(eventRepo domain.EventRepository,
	issuer domain.TokenIssuer,
	hasher domain.PasswordComparer,
	adminPasswordHash, vendorPasswordHash string,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		eventRepo:          eventRepo,
		issuer:             issuer,
		hasher:             hasher,
		adminPasswordHash:  adminPasswordHash,
		vendorPasswordHash: vendorPasswordHash,
		contextTimeout:     timeout,
	}
}

func (s *authService) Login(ctx context.Context, role, password, eventID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if password == "" || role == "" {
		return "", fmt.Errorf("%w: missing password or role", domain.ErrInvalidArgument)
	}

	switch role {
	case domain.RoleAdmin:
		if s.adminPasswordHash == "" || s.hasher.Compare(s.adminPasswordHash, password) != nil {
			return "", domain.ErrUnauthorized
		}
		return s.issue(domain.RoleAdmin, "")
	case domain.RoleVendor:
		// The admin password or the global vendor password opens any event.
		if s.adminPasswordHash != "" && s.hasher.Compare(s.adminPasswordHash, password) == nil {
			return s.issue(domain.RoleVendor, eventID)
		}
		if s.vendorPasswordHash != "" && s.hasher.Compare(s.vendorPasswordHash, password) == nil {
			return s.issue(domain.RoleVendor, eventID)
		}
		if eventID != "" {
			event, err := s.eventRepo.GetByID(ctx, eventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return "", domain.ErrUnauthorized
				}
				return "", fmt.Errorf("get event: %w", err)
			}
			if event.VendorPasswordHash != nil && s.hasher.Compare(*event.VendorPasswordHash, password) == nil {
				return s.issue(domain.RoleVendor, eventID)
			}
		}
		return "", domain.ErrUnauthorized
	}
	return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, role)
}

func (s *authService) issue(role, eventID string) (string, error) {
	token, err := s.issuer.Issue(role, eventID, tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
