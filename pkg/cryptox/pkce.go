// Package cryptox provides the random-string and PKCE challenge primitives
// used by the interactive login flow.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// NonceLength is the character length of generated nonces and PKCE verifiers.
const NonceLength = 16

const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateNonce creates a cryptographically secure random alphanumeric string
// of NonceLength characters. The same generator serves both the OIDC nonce
// and the PKCE code verifier.
func GenerateNonce() (string, error) {
	max := big.NewInt(int64(len(nonceAlphabet)))

	buf := make([]byte, NonceLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}
		buf[i] = nonceAlphabet[n.Int64()]
	}

	return string(buf), nil
}

// MustGenerateNonce is like GenerateNonce but panics on error.
// Use this only in contexts where failure is unrecoverable.
func MustGenerateNonce() string {
	nonce, err := GenerateNonce()
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate nonce: %v", err))
	}
	return nonce
}

// CodeChallenge derives the S256 PKCE challenge for a verifier: the SHA-256
// digest of the verifier, base64url-encoded without padding (RFC 7636).
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
