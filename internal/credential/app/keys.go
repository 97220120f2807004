package app

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/credkit/pkg/cryptox"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
)

// sealPurpose labels the HKDF derivation of the key that encrypts the
// signing key at rest. Changing it invalidates every sealed key file.
const sealPurpose = "signing-key-seal"

// InitSigningKeys produces the signer, key set and verifier for the
// configured algorithm.
//
// Storage modes:
//   - "ephemeral": The signing key is generated on startup and held only in
//     memory. All outstanding tokens become invalid when the service restarts.
//   - "sealed": The signing key lives on disk encrypted with a key derived
//     from the master key file. Tokens survive restarts.
//
// Supported algorithms: ES256, EdDSA
func InitSigningKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, jwtx.Verifier, error) {
	var (
		pemKey []byte
		err    error
	)

	switch cfg.KeyStorageMode {
	case "sealed":
		pemKey, err = loadOrCreateSealedKey(cfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sealed signing key: %w", err)
		}
		logger.Info("sealed key mode enabled, tokens will survive restarts",
			"algorithm", cfg.Algorithm,
			"key_file", cfg.SigningKeyFile,
		)

	case "ephemeral":
		fallthrough
	default:
		pemKey, err = generateSigningKey(cfg.Algorithm)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("generate signing key: %w", err)
		}
		logger.Info("ephemeral signing key generated", "algorithm", cfg.Algorithm)
	}

	// Derive the key id from the key material itself so a sealed key keeps
	// its kid across restarts and old tokens still resolve in the key set.
	kid := cryptox.FingerprintToken(string(pemKey))[:12]

	var signer jwtx.Signer
	switch cfg.Algorithm {
	case "ES256":
		signer, err = jwtx.NewSignerES256(kid, pemKey)
	default:
		signer, err = jwtx.NewSignerEdDSA(kid, pemKey)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, fmt.Errorf("register signer: %w", err)
	}

	var verifier jwtx.Verifier
	switch cfg.Algorithm {
	case "ES256":
		verifier = jwtx.NewCommonES256(keys, cfg.Issuer)
	default:
		verifier = jwtx.NewCommonEdDSA(keys, cfg.Issuer)
	}

	logger.Info("signing keys loaded", "kid", kid, "issuer", cfg.Issuer)
	return signer, keys, verifier, nil
}

func generateSigningKey(algorithm string) ([]byte, error) {
	if algorithm == "ES256" {
		return cryptox.GenerateES256Key()
	}
	return cryptox.GenerateEd25519Key()
}

// loadOrCreateSealedKey opens the encrypted signing key file, or on first
// run generates a key and writes it sealed.
func loadOrCreateSealedKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.MasterKeyPath == "" {
		return nil, fmt.Errorf("CREDKIT_MASTER_KEY_PATH is required for sealed key storage")
	}

	master, err := os.ReadFile(cfg.MasterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read master key: %w", err)
	}

	sealKey, err := cryptox.DeriveKey(bytes.TrimSpace(master), sealPurpose, 32)
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(sealKey)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(cfg.SigningKeyFile)
	switch {
	case err == nil:
		pemKey, err := sealer.Open(sealed)
		if err != nil {
			return nil, fmt.Errorf("unseal %s: %w", cfg.SigningKeyFile, err)
		}
		return pemKey, nil

	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read signing key file: %w", err)
	}

	// First run: mint a key and persist it sealed.
	pemKey, err := generateSigningKey(cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	blob, err := sealer.Seal(pemKey)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(cfg.SigningKeyFile, blob, 0o600); err != nil {
		return nil, fmt.Errorf("write signing key file: %w", err)
	}

	logger.Info("new sealed signing key written", "key_file", cfg.SigningKeyFile)
	return pemKey, nil
}
