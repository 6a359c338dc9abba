package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailview/community-service/internal/domain"
)

const (
	uidCookieName  = "community_visitor_uid"
	nameCookieName = "community_visitor_name"
)

var (
	guestAdjectives = []string{"Curious", "Bright", "Swift", "Bold", "Lively", "Focused", "Keen", "Quiet", "Warm"}
	guestNouns      = []string{"Sparrow", "Falcon", "Lantern", "Pixel", "Beacon", "Willow", "Summit", "Meadow", "Harbor"}
)

type visitorKey struct{}

// Visitor middleware resolves or creates the anonymous visitor identity.
// UID and display name live in separate HMAC-signed cookies, format
// <b64url(value)>.<exp_unix>.<sig>. Valid cookies round-trip unchanged, so
// the identity is stable for the session; tampered or expired ones are
// silently replaced.
func Visitor(secret string, ttl time.Duration, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := domain.VisitorIdentity{}

			if c, err := r.Cookie(uidCookieName); err == nil {
				if v, ok := verifyVisitorCookie(secret, c.Value); ok {
					identity.UID = v
				}
			}
			if c, err := r.Cookie(nameCookieName); err == nil {
				if v, ok := verifyVisitorCookie(secret, c.Value); ok {
					identity.DisplayName = v
				}
			}

			if identity.UID == "" {
				identity.UID = uuid.NewString()
				setVisitorCookie(w, uidCookieName, secret, identity.UID, ttl, secureCookie)
			}
			if identity.DisplayName == "" {
				identity.DisplayName = generateGuestName()
				setVisitorCookie(w, nameCookieName, secret, identity.DisplayName, ttl, secureCookie)
			}

			ctx := context.WithValue(r.Context(), visitorKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VisitorFromContext extracts the identity placed by the Visitor middleware.
func VisitorFromContext(ctx context.Context) (domain.VisitorIdentity, bool) {
	v, ok := ctx.Value(visitorKey{}).(domain.VisitorIdentity)
	return v, ok && v.UID != ""
}

// generateGuestName returns "<Adjective> <Noun>-<2 hex>" drawn uniformly from
// the fixed word lists plus one random byte.
func generateGuestName() string {
	var b [1]byte
	_, _ = rand.Read(b[:])

	return fmt.Sprintf("%s %s-%02X", pickWord(guestAdjectives), pickWord(guestNouns), b[0])
}

func pickWord(words []string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return words[0]
	}
	return words[n.Int64()]
}

func setVisitorCookie(w http.ResponseWriter, name, secret, value string, ttl time.Duration, secure bool) {
	exp := time.Now().Add(ttl).Unix()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    signVisitorCookie(secret, value, exp),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// signVisitorCookie creates a signed cookie value. The raw value is
// base64url-encoded so display names with spaces survive the cookie jar.
func signVisitorCookie(secret, value string, exp int64) string {
	payload := fmt.Sprintf("%s.%d", base64.RawURLEncoding.EncodeToString([]byte(value)), exp)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return payload + "." + sig
}

// verifyVisitorCookie validates a signed cookie value and returns the raw
// value on success.
func verifyVisitorCookie(secret, cookie string) (string, bool) {
	parts := strings.SplitN(cookie, ".", 3)
	if len(parts) != 3 {
		return "", false
	}

	encoded, expStr := parts[0], parts[1]

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", false
	}
	if time.Now().Unix() > exp {
		return "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}

	expected := signVisitorCookie(secret, string(raw), exp)
	if !hmac.Equal([]byte(cookie), []byte(expected)) {
		return "", false
	}

	return string(raw), true
}
