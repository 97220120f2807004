package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
)

func TestCSRFService_IssueAndValidate(t *testing.T) {
	svc := &CSRFService{Cache: memory.NewStore()}
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "session-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.Equal(t, "session-1", tok.SessionID)
	require.True(t, tok.ExpiresAt.After(tok.IssuedAt))

	require.NoError(t, svc.Validate(ctx, tok.Value, "session-1"))
}

func TestCSRFService_SessionMismatch(t *testing.T) {
	svc := &CSRFService{Cache: memory.NewStore()}
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "session-1")
	require.NoError(t, err)

	err = svc.Validate(ctx, tok.Value, "session-2")
	require.ErrorIs(t, err, domain.ErrCSRFMismatch)
}

func TestCSRFService_UnknownAndEmptyInputs(t *testing.T) {
	svc := &CSRFService{Cache: memory.NewStore()}
	ctx := context.Background()

	require.ErrorIs(t, svc.Validate(ctx, "never-issued", "session-1"), domain.ErrCSRFMismatch)
	require.ErrorIs(t, svc.Validate(ctx, "", "session-1"), domain.ErrCSRFMismatch)
	require.ErrorIs(t, svc.Validate(ctx, "value", ""), domain.ErrCSRFMismatch)
}

func TestCSRFService_Expiry(t *testing.T) {
	clock := newTestClock()
	svc := &CSRFService{Cache: memory.NewStoreWithClock(clock.Now), TTL: time.Minute}
	ctx := context.Background()

	tok, err := svc.Issue(ctx, "session-1")
	require.NoError(t, err)

	clock.Advance(61 * time.Second)

	// Expired tokens fail identically to unknown ones.
	err = svc.Validate(ctx, tok.Value, "session-1")
	require.ErrorIs(t, err, domain.ErrCSRFMismatch)
}

func TestCSRFService_EmptySessionOnIssue(t *testing.T) {
	svc := &CSRFService{Cache: memory.NewStore()}

	_, err := svc.Issue(context.Background(), "")
	require.Error(t, err)
}

func TestCSRFService_FailsClosedOnOutage(t *testing.T) {
	svc := &CSRFService{Cache: unavailableCache{}}
	ctx := context.Background()

	_, err := svc.Issue(ctx, "session-1")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = svc.Validate(ctx, "value", "session-1")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
