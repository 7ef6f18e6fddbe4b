package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"boothsale/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIssuer encodes the claims into the token string for easy assertions.
type fakeIssuer struct{}

func (fakeIssuer) Issue(role, eventID string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("token|%s|%s", role, eventID), nil
}

func newAuthFixture(t *testing.T) (*fakeEventRepo, domain.AuthService, string) {
	t.Helper()
	events := newFakeEventRepo()
	e := domain.NewEvent("Gallery Night", nil, nil, time.Now(), time.Now())
	require.NoError(t, events.Create(context.Background(), e))
	hash := "hash:booth-pass"
	e.VendorPasswordHash = &hash

	svc := NewAuthService(events, fakeIssuer{}, fakeHasher{}, "hash:admin-pass", "hash:vendor-pass", time.Second)
	return events, svc, e.ID
}

func TestAuthService_LoginAdmin(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newAuthFixture(t)

	token, err := svc.Login(ctx, domain.RoleAdmin, "admin-pass", "")
	require.NoError(t, err)
	assert.Equal(t, "token|admin|", token)

	_, err = svc.Login(ctx, domain.RoleAdmin, "wrong", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_LoginVendor(t *testing.T) {
	ctx := context.Background()
	_, svc, eventID := newAuthFixture(t)

	tests := []struct {
		name     string
		password string
		eventID  string
		want     string
		wantErr  error
	}{
		{"global vendor password", "vendor-pass", eventID, "token|vendor|" + eventID, nil},
		{"admin password works for vendor", "admin-pass", eventID, "token|vendor|" + eventID, nil},
		{"event specific password", "booth-pass", eventID, "token|vendor|" + eventID, nil},
		{"event password without event id", "booth-pass", "", "", domain.ErrUnauthorized},
		{"wrong password", "nope", eventID, "", domain.ErrUnauthorized},
		{"unknown event", "booth-pass", "missing", "", domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(ctx, domain.RoleVendor, tt.password, tt.eventID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newAuthFixture(t)

	_, err := svc.Login(ctx, "", "pass", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Login(ctx, domain.RoleAdmin, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Login(ctx, "superuser", "pass", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAuthService_LoginAdminNotConfigured(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo()
	svc := NewAuthService(events, fakeIssuer{}, fakeHasher{}, "", "", time.Second)

	_, err := svc.Login(ctx, domain.RoleAdmin, "anything", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
