package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
	"github.com/aussiebroadwan/credkit/pkg/idx"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

// TokenService mints and validates the signed access/refresh token pair.
// Signing and parsing are pure CPU work; only the revocation ledger touches
// the cache store.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Ledger     *RevocationLedger
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair mints a fresh access+refresh pair for a subject under a new
// session id. The two tokens share the session but carry distinct jtis, so
// each is revocable on its own.
func (s *TokenService) IssuePair(ctx context.Context, subjectID string, scopes []string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	pair, err := s.issuePair(subjectID, idx.New().String(), scopes, time.Now().UTC())
	if err != nil {
		l.Error("failed to issue token pair", slog.Any("error", err))
		return nil, err
	}

	l.Info("token pair issued",
		slog.String("subject_id", subjectID),
		slog.String("session_id", pair.SessionID),
	)
	return pair, nil
}

func (s *TokenService) issuePair(subjectID, sid string, scopes []string, now time.Time) (*domain.TokenPair, error) {
	access := jwtx.NewClaims(subjectID, jwtx.TypeAccess, sid, scopes, s.AccessTTL, s.Issuer, now)
	accessStr, err := s.Signer.Sign(access)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwtx.NewClaims(subjectID, jwtx.TypeRefresh, sid, scopes, s.RefreshTTL, s.Issuer, now)
	refreshStr, err := s.Signer.Sign(refresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessStr,
		RefreshToken: refreshStr,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
		AccessJTI:    access.ID,
		RefreshJTI:   refresh.ID,
		SessionID:    sid,
	}, nil
}

// Validate checks a presented access token end to end: signature, expiry,
// type tag, then the revocation ledger. On success it returns the verified
// identity for the request context.
func (s *TokenService) Validate(ctx context.Context, raw string) (*domain.Identity, error) {
	return s.validateTyped(ctx, raw, jwtx.TypeAccess)
}

func (s *TokenService) validateTyped(ctx context.Context, raw, wantType string) (*domain.Identity, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}

	// A refresh token presented where an access token belongs (or the other
	// way round) is rejected as malformed; we don't tell callers more.
	if claims.ValidateType(wantType) != nil {
		return nil, domain.ErrMalformedCredential
	}

	revoked, err := s.Ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrRevokedCredential
	}

	return &domain.Identity{
		SubjectID: claims.Subject,
		TokenType: claims.Typ,
		SessionID: claims.SID,
		JTI:       claims.ID,
		Scopes:    claims.Scopes,
	}, nil
}

// Refresh implements rotate-on-use: the presented refresh token is retired
// in the ledger before a new access+refresh pair is minted, so a stolen
// refresh token is worthless once its rightful holder has used it.
func (s *TokenService) Refresh(ctx context.Context, refreshRaw string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.parse(refreshRaw)
	if err != nil {
		return nil, err
	}
	if claims.ValidateType(jwtx.TypeRefresh) != nil {
		return nil, domain.ErrMalformedCredential
	}

	revoked, err := s.Ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		l.Warn("reuse of rotated refresh token",
			slog.String("subject_id", claims.Subject),
			slog.String("session_id", claims.SID),
		)
		return nil, domain.ErrRevokedCredential
	}

	now := time.Now().UTC()

	// Retire the old refresh jti first. If this write fails we must not
	// mint: a pair issued past a failed revoke would leave the old token
	// replayable.
	if err := s.Ledger.Revoke(ctx, claims.ID, claims.Typ, claims.RemainingTTL(now)); err != nil {
		return nil, err
	}

	// The session id survives rotation so the whole login remains traceable.
	pair, err := s.issuePair(claims.Subject, claims.SID, claims.Scopes, now)
	if err != nil {
		return nil, err
	}

	l.Info("refresh token rotated",
		slog.String("subject_id", claims.Subject),
		slog.String("session_id", claims.SID),
	)
	return pair, nil
}

// Revoke retires a presented token (access or refresh) ahead of its natural
// expiry. Revoking an already-expired token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if errors.Is(err, domain.ErrExpiredCredential) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.Ledger.Revoke(ctx, claims.ID, claims.Typ, claims.RemainingTTL(time.Now().UTC()))
}

// Logout retires both halves of a pair. The two revocations are independent:
// failing to revoke one does not skip the other.
func (s *TokenService) Logout(ctx context.Context, accessRaw, refreshRaw string) error {
	var errs []error
	if accessRaw != "" {
		errs = append(errs, s.Revoke(ctx, accessRaw))
	}
	if refreshRaw != "" {
		errs = append(errs, s.Revoke(ctx, refreshRaw))
	}
	return errors.Join(errs...)
}

// parse verifies signature and expiry, folding codec errors into the coarse
// credential taxonomy.
func (s *TokenService) parse(raw string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, domain.ErrExpiredCredential
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %v", domain.ErrMalformedCredential, err)
	}
	return claims, nil
}
