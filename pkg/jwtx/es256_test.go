package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/credkit/pkg/cryptox"
)

func newES256Fixture(t *testing.T) (Signer, Verifier) {
	t.Helper()

	pemKey, err := cryptox.GenerateES256Key()
	require.NoError(t, err)

	signer, err := NewSignerES256("es-kid", pemKey)
	require.NoError(t, err)

	keys := NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	return signer, NewCommonES256(keys, "credkit-test")
}

func TestES256_SignVerifyRoundTrip(t *testing.T) {
	signer, verifier := newES256Fixture(t)

	claims := NewClaims("svc-9", TypeRefresh, "sess-2", nil, time.Hour, "credkit-test", time.Now())

	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "svc-9", got.Subject)
	require.Equal(t, TypeRefresh, got.Typ)
	require.Equal(t, claims.ID, got.ID)
}

func TestES256_RejectsEdDSAToken(t *testing.T) {
	// A token signed with a different algorithm must not pass, even if the
	// kid happens to resolve.
	edPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	edSigner, err := NewSignerEdDSA("es-kid", edPEM)
	require.NoError(t, err)

	_, verifier := newES256Fixture(t)

	claims := NewClaims("svc-9", TypeAccess, "", nil, time.Minute, "credkit-test", time.Now())
	tokenStr, err := edSigner.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr)
	require.Error(t, err)
}

func TestES256_Expired(t *testing.T) {
	signer, verifier := newES256Fixture(t)

	claims := NewClaims("svc-9", TypeAccess, "", nil, time.Second, "credkit-test", time.Now().Add(-time.Minute))

	tokenStr, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr)
	require.ErrorIs(t, err, ErrExpired)
}
