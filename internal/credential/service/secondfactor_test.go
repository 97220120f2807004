package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
)

func newSecondFactorFixture(t *testing.T) (*SecondFactorService, string) {
	t.Helper()

	svc := &SecondFactorService{
		Guard:       &RateGuardService{Cache: memory.NewStore()},
		Secrets:     memory.NewStore(),
		MaxAttempts: 2,
	}

	key, err := svc.Enroll("credkit", "alice@example.com")
	require.NoError(t, err)
	require.Contains(t, key.URL(), "otpauth://")

	return svc, key.Secret()
}

func TestSecondFactor_VerifyCurrentStep(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	at := time.Unix(1_700_000_000, 0).UTC()

	code, err := totp.GenerateCode(secret, at)
	require.NoError(t, err)

	require.True(t, svc.Verify(secret, code, at))
}

func TestSecondFactor_AdjacentStepsWithinSkew(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	at := time.Unix(1_700_000_000, 0).UTC()

	// Codes from one step behind and one ahead still verify.
	for _, offset := range []time.Duration{-30 * time.Second, 30 * time.Second} {
		code, err := totp.GenerateCode(secret, at.Add(offset))
		require.NoError(t, err)
		require.True(t, svc.Verify(secret, code, at), "offset %s", offset)
	}
}

func TestSecondFactor_BeyondSkewRejected(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	at := time.Unix(1_700_000_000, 0).UTC()

	for _, offset := range []time.Duration{-90 * time.Second, 90 * time.Second} {
		code, err := totp.GenerateCode(secret, at.Add(offset))
		require.NoError(t, err)
		require.False(t, svc.Verify(secret, code, at), "offset %s", offset)
	}
}

func TestSecondFactor_MalformedCodeRejected(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	at := time.Unix(1_700_000_000, 0).UTC()

	for _, code := range []string{"", "12345", "abcdef", "1234567"} {
		require.False(t, svc.Verify(secret, code, at), "code %q", code)
	}
}

func TestSecondFactor_GuardedVerifyThrottlesFailures(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	ctx := context.Background()

	// Two failures consume the budget.
	for i := 0; i < 2; i++ {
		err := svc.VerifyCode(ctx, "alice", secret, "000000")
		require.ErrorIs(t, err, domain.ErrSecondFactorInvalid)
	}

	// A correct code no longer helps while throttled.
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, svc.VerifyCode(ctx, "alice", secret, code), domain.ErrRateLimited)

	// Other subjects are unaffected.
	require.ErrorIs(t, svc.VerifyCode(ctx, "bob", secret, "000000"), domain.ErrSecondFactorInvalid)
}

func TestSecondFactor_SuccessClearsFailures(t *testing.T) {
	svc, secret := newSecondFactorFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.VerifyCode(ctx, "alice", secret, "000000"), domain.ErrSecondFactorInvalid)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode(ctx, "alice", secret, code))

	// The budget is fresh again after success.
	require.ErrorIs(t, svc.VerifyCode(ctx, "alice", secret, "000000"), domain.ErrSecondFactorInvalid)
	require.ErrorIs(t, svc.VerifyCode(ctx, "alice", secret, "000000"), domain.ErrSecondFactorInvalid)
}

func TestSecondFactor_EnrolledSubject(t *testing.T) {
	svc, _ := newSecondFactorFixture(t)
	ctx := context.Background()

	key, err := svc.EnrollSubject(ctx, "credkit", "carol")
	require.NoError(t, err)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.VerifySubject(ctx, "carol", code))
	require.ErrorIs(t, svc.VerifySubject(ctx, "carol", "000000"), domain.ErrSecondFactorInvalid)

	// Unenrolled subjects fail like a wrong code.
	require.ErrorIs(t, svc.VerifySubject(ctx, "mallory", code), domain.ErrSecondFactorInvalid)
}

func TestSecondFactor_FailsClosedOnOutage(t *testing.T) {
	svc := &SecondFactorService{Guard: &RateGuardService{Cache: unavailableCache{}}}

	err := svc.VerifyCode(context.Background(), "alice", "SECRET", "000000")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
