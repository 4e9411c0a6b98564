package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
)

// TOTPService manages TOTP enrollment secrets, their at-rest encryption, and
// the short-lived MFA tokens that bridge password login and code entry.
type TOTPService struct {
	encKey  []byte // AES-256-GCM key, derived from the signing secret
	signKey []byte // HMAC key for MFA tokens
}

// NewTOTPService derives the encryption key from the JWT secret so operators
// only configure one secret.
func NewTOTPService(jwtSecret []byte) *TOTPService {
	h := sha256.Sum256(jwtSecret)
	return &TOTPService{encKey: h[:], signKey: jwtSecret}
}

// GenerateSecret creates a fresh TOTP secret and its otpauth URL for
// authenticator apps.
func (t *TOTPService) GenerateSecret(accountName, issuer string) (secret, otpauthURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate TOTP key: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// Validate reports whether the code matches the secret for the current
// time step.
func (t *TOTPService) Validate(code, secret string) bool {
	return totp.Validate(code, secret)
}

func (t *TOTPService) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(t.encKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM, returning base64 with the nonce
// prepended.
func (t *TOTPService) Encrypt(plaintext string) (string, error) {
	gcm, err := t.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (t *TOTPService) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	gcm, err := t.aead()
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// recoveryCharset keeps codes easy to read back over the phone.
const recoveryCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomRecoveryCode() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = recoveryCharset[b[i]%byte(len(recoveryCharset))]
	}
	return string(b), nil
}

// GenerateRecoveryCodes returns n one-time codes in plaintext, for showing to
// the user exactly once, alongside the SHA-256 hex hashes to persist.
func (t *TOTPService) GenerateRecoveryCodes(n int) (plain, hashed []string, err error) {
	plain = make([]string, n)
	hashed = make([]string, n)
	for i := range plain {
		code, err := randomRecoveryCode()
		if err != nil {
			return nil, nil, fmt.Errorf("generate recovery code: %w", err)
		}
		sum := sha256.Sum256([]byte(code))
		plain[i] = code
		hashed[i] = hex.EncodeToString(sum[:])
	}
	return plain, hashed, nil
}

// mfaClaims mark a token as an MFA challenge rather than an access token.
type mfaClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	MFA    bool   `json:"mfa"`
}

// IssueMFAToken signs a short-lived token that proves the password step
// succeeded while the TOTP code is still outstanding.
func (t *TOTPService) IssueMFAToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := mfaClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "driftscope-mfa",
		},
		UserID: userID,
		MFA:    true,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signKey)
	if err != nil {
		return "", fmt.Errorf("sign MFA token: %w", err)
	}
	return signed, nil
}

// ValidateMFAToken checks signature, expiry, and the mfa marker, returning
// the user the challenge belongs to.
func (t *TOTPService) ValidateMFAToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &mfaClaims{}, func(_ *jwt.Token) (any, error) {
		return t.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse MFA token: %w", err)
	}
	claims, ok := token.Claims.(*mfaClaims)
	if !ok || !token.Valid || !claims.MFA {
		return "", errors.New("invalid MFA token claims")
	}
	return claims.UserID, nil
}
