package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
)

const totpKeyPrefix = "totp:"

const (
	totpPeriod = 30

	// DefaultSecondFactorSkew accepts one time-step either side of now to
	// absorb clock drift between server and authenticator app.
	DefaultSecondFactorSkew = 1

	// DefaultSecondFactorAttempts failed verifications within the window
	// throttle the subject.
	DefaultSecondFactorAttempts = 5

	// DefaultSecondFactorWindow is the failure-counting window.
	DefaultSecondFactorWindow = 5 * time.Minute
)

// SecondFactorService verifies time-based one-time codes against a shared
// secret. Verification is stateless; the rate guard sits in front so a
// six-digit code cannot be brute forced online.
type SecondFactorService struct {
	Guard *RateGuardService

	// Secrets holds enrolled shared secrets keyed by subject. Optional;
	// callers that manage secrets themselves use Verify/VerifyCode directly.
	Secrets store.Cache

	Skew          uint
	MaxAttempts   int64
	AttemptWindow time.Duration
}

// Enroll provisions a new shared secret for account. The returned key
// carries the otpauth:// URL the client renders as a QR code.
func (s *SecondFactorService) Enroll(issuer, account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
}

// Verify reports whether code matches sharedSecret at the given instant,
// accepting the configured skew either side.
func (s *SecondFactorService) Verify(sharedSecret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, sharedSecret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      s.skew(),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// VerifyCode is the guarded entry point. Only failed verifications count
// against the subject's bucket, and a subject over the threshold is rejected
// before the code is even looked at.
func (s *SecondFactorService) VerifyCode(ctx context.Context, subjectID, sharedSecret, code string) error {
	bucket := "2fa:" + subjectID

	decision, err := s.Guard.Peek(ctx, bucket, s.maxAttempts())
	if err != nil {
		return err
	}
	if decision.Throttled {
		return domain.ErrRateLimited
	}

	if !s.Verify(sharedSecret, code, time.Now()) {
		if _, gerr := s.Guard.Check(ctx, bucket, s.maxAttempts(), s.attemptWindow()); gerr != nil {
			return gerr
		}
		return domain.ErrSecondFactorInvalid
	}

	// Success clears the failure count so honest typos don't accumulate.
	return s.Guard.Reset(ctx, bucket)
}

// EnrollSubject provisions and stores a shared secret for subjectID.
// Re-enrolling replaces any previous secret.
func (s *SecondFactorService) EnrollSubject(ctx context.Context, issuer, subjectID string) (*otp.Key, error) {
	key, err := s.Enroll(issuer, subjectID)
	if err != nil {
		return nil, err
	}

	if err := s.Secrets.Set(ctx, totpKeyPrefix+subjectID, []byte(key.Secret()), 0); err != nil {
		return nil, storeUnavailable(err)
	}
	return key, nil
}

// VerifySubject verifies a code against subjectID's enrolled secret. A
// subject with no enrollment fails like any wrong code.
func (s *SecondFactorService) VerifySubject(ctx context.Context, subjectID, code string) error {
	secret, err := s.Secrets.Get(ctx, totpKeyPrefix+subjectID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.ErrSecondFactorInvalid
	case err != nil:
		return storeUnavailable(err)
	}

	return s.VerifyCode(ctx, subjectID, string(secret), code)
}

func (s *SecondFactorService) skew() uint {
	if s.Skew > 0 {
		return s.Skew
	}
	return DefaultSecondFactorSkew
}

func (s *SecondFactorService) maxAttempts() int64 {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultSecondFactorAttempts
}

func (s *SecondFactorService) attemptWindow() time.Duration {
	if s.AttemptWindow > 0 {
		return s.AttemptWindow
	}
	return DefaultSecondFactorWindow
}
