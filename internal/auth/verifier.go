package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the parsed, validated token payload.
type Claims struct {
	Subject string   `json:"sub"`
	Roles   []string `json:"roles"`
	Scopes  []string `json:"scopes"`
}

// Role constants.
const (
	RoleObserver = "observer"
	RoleOperator = "operator"
)

// Scope constants.
const (
	ScopeRead      = "read"
	ScopeCommand   = "command"
	ScopeTelemetry = "telemetry"
)

// VerifierConfig selects the signing algorithm and its key material.
type VerifierConfig struct {
	Algorithm    string // "RS256" or "HS256"
	PublicKeyPEM string // RS256
	SecretKey    string // HS256
}

// Verifier validates JWT bearer tokens.
type Verifier struct {
	config    VerifierConfig
	publicKey *rsa.PublicKey
}

// NewVerifier creates a verifier from the given configuration.
func NewVerifier(config VerifierConfig) (*Verifier, error) {
	v := &Verifier{config: config}

	switch config.Algorithm {
	case "RS256":
		if config.PublicKeyPEM == "" {
			return nil, fmt.Errorf("RS256 requires a PEM public key")
		}
		key, err := parseRSAPublicKey(config.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from PEM: %w", err)
		}
		v.publicKey = key
	case "HS256":
		if config.SecretKey == "" {
			return nil, fmt.Errorf("HS256 requires a secret key")
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", config.Algorithm)
	}

	return v, nil
}

// VerifyToken parses and validates tokenString and returns its claims.
func (v *Verifier) VerifyToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.config.Algorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if v.config.Algorithm == "RS256" {
			return v.publicKey, nil
		}
		return []byte(v.config.SecretKey), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	mapClaims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return extractClaims(mapClaims)
}

// extractClaims pulls subject, roles, and scopes out of the raw claims and
// rejects values outside the fixed role/scope sets.
func extractClaims(claims *jwt.MapClaims) (*Claims, error) {
	sub, ok := (*claims)["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing or invalid 'sub' claim")
	}

	roles, err := stringSliceClaim(claims, "roles")
	if err != nil {
		return nil, err
	}
	scopes, err := stringSliceClaim(claims, "scopes")
	if err != nil {
		return nil, err
	}

	validRoles := map[string]bool{RoleObserver: true, RoleOperator: true}
	for _, role := range roles {
		if !validRoles[role] {
			return nil, fmt.Errorf("invalid role: %q", role)
		}
	}
	validScopes := map[string]bool{ScopeRead: true, ScopeCommand: true, ScopeTelemetry: true}
	for _, scope := range scopes {
		if !validScopes[scope] {
			return nil, fmt.Errorf("invalid scope: %q", scope)
		}
	}
	if len(roles) == 0 || len(scopes) == 0 {
		return nil, fmt.Errorf("token must carry at least one role and one scope")
	}

	return &Claims{Subject: sub, Roles: roles, Scopes: scopes}, nil
}

// stringSliceClaim extracts a []string claim, tolerating the []interface{}
// shape json decoding produces.
func stringSliceClaim(claims *jwt.MapClaims, key string) ([]string, error) {
	value, ok := (*claims)[key]
	if !ok {
		return nil, fmt.Errorf("missing claim: %s", key)
	}

	switch val := value.(type) {
	case []string:
		return val, nil
	case []interface{}:
		out := make([]string, len(val))
		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid %s claim: not a string array", key)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid %s claim: not a string array", key)
	}
}

// parseRSAPublicKey decodes a PKIX PEM block into an RSA public key.
func parseRSAPublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPub, nil
}
