// Package auth resolves request credentials into an owner identity or a
// staff flag. Several token formats are in circulation (the SPA's owner
// tokens, a legacy point-of-sale staff token, HS256 staff JWTs and a
// dev-only header), so resolution is a small ordered list of strategies
// tried until one succeeds.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sticctape/barkeep-backend/config"
)

const (
	// OwnerPrefix normalizes owner identities resolved from ephemeral
	// owner tokens.
	OwnerPrefix = "owner:"

	ownerTokenPrefix = "owner_"
	staffTokenPrefix = "staff_"

	// staffSigLen is how many leading characters of the shared secret the
	// legacy two-part token carries as its trailing segment.
	staffSigLen = 20
)

// staffCheck reports whether the request carries a valid staff credential.
// Failures fall through to the next check, never an error.
type staffCheck func(r *http.Request) bool

type Resolver struct {
	cfg         config.AuthConfig
	staffChecks []staffCheck
}

func NewResolver(cfg config.AuthConfig) *Resolver {
	r := &Resolver{cfg: cfg}
	r.staffChecks = []staffCheck{
		r.staffLegacyBearer,
		r.staffJWT,
		r.staffSharedSecret,
	}
	return r
}

// ResolveOwner extracts an owner identity from the request. Owner tokens
// give full read+write access; the returned identity carries the "owner:"
// prefix. The X-Staff-Token fallback matches the POS companion client,
// which sends its owner token on that header.
func (rv *Resolver) ResolveOwner(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r); ok && strings.HasPrefix(token, ownerTokenPrefix) {
		return OwnerPrefix + token, true
	}

	if alt := r.Header.Get("X-Staff-Token"); strings.HasPrefix(alt, ownerTokenPrefix) {
		return OwnerPrefix + alt, true
	}

	// Dev-only escape hatch, must never be enabled in production config.
	if rv.cfg.AllowHeaderDev {
		if header := r.Header.Get("X-Owner-Id"); header != "" {
			return header, true
		}
	}

	return "", false
}

// ResolveStaff reports whether the request carries a staff credential.
// Staff is a read-only privilege, not an owner identity.
func (rv *Resolver) ResolveStaff(r *http.Request) bool {
	for _, check := range rv.staffChecks {
		if check(r) {
			return true
		}
	}
	return false
}

// staffLegacyBearer accepts static-prefixed staff tokens.
func (rv *Resolver) staffLegacyBearer(r *http.Request) bool {
	token, ok := bearerToken(r)
	return ok && strings.HasPrefix(token, staffTokenPrefix)
}

// staffJWT accepts an HS256 JWT whose subject is "staff", verified against
// the configured secret with expiry and optional audience/issuer checks.
func (rv *Resolver) staffJWT(r *http.Request) bool {
	if rv.cfg.JWTSecret == "" {
		return false
	}
	token, ok := bearerToken(r)
	if !ok {
		return false
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if rv.cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(rv.cfg.JWTAudience))
	}
	if rv.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(rv.cfg.JWTIssuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(rv.cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return false
	}

	sub, err := parsed.Claims.GetSubject()
	return err == nil && sub == "staff"
}

// staffSharedSecret accepts the legacy two-part token
// "<base64url-json-payload>.<sig>" where sig is the first 20 characters of
// the shared secret and the payload carries subject "staff" and an
// optional expiry.
func (rv *Resolver) staffSharedSecret(r *http.Request) bool {
	if len(rv.cfg.StaffSharedSecret) < staffSigLen {
		return false
	}
	token, ok := bearerToken(r)
	if !ok {
		return false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return false
	}
	if parts[1] != rv.cfg.StaffSharedSecret[:staffSigLen] {
		return false
	}

	raw, err := decodeBase64(parts[0])
	if err != nil {
		return false
	}
	var payload struct {
		Sub string `json:"sub"`
		Exp int64  `json:"exp"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}
	if payload.Sub != "staff" {
		return false
	}
	if payload.Exp != 0 && time.Now().Unix() > payload.Exp {
		return false
	}
	return true
}

// OwnerMatches reports whether two identities refer to the same owner.
// Identities match when exactly equal, or when both carry the "owner:"
// prefix. The prefix rule tolerates owner tokens that change value between
// requests; it also makes distinct owner tokens interchangeable, which is
// accepted for single-tenant deployments.
func OwnerMatches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return strings.HasPrefix(a, OwnerPrefix) && strings.HasPrefix(b, OwnerPrefix)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func decodeBase64(s string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return raw, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
