package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailview/community-service/internal/domain"
)

const testSecret = "test-secret"

func runVisitor(t *testing.T, cookies []*http.Cookie) (*httptest.ResponseRecorder, domain.VisitorIdentity) {
	t.Helper()

	var got domain.VisitorIdentity
	handler := Visitor(testSecret, time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := VisitorFromContext(r.Context())
		require.True(t, ok)
		got = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, got
}

func TestVisitor_IssuesBothCookiesOnFirstVisit(t *testing.T) {
	rec, identity := runVisitor(t, nil)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	assert.NotEmpty(t, identity.UID)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z]+ [A-Za-z]+-[0-9A-F]{2}$`), identity.DisplayName)

	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
	}
}

func TestVisitor_ValidCookiesAreStable(t *testing.T) {
	first, identity := runVisitor(t, nil)

	second, again := runVisitor(t, first.Result().Cookies())

	assert.Equal(t, identity, again)
	assert.Empty(t, second.Result().Cookies(), "valid cookies must not be reissued")
}

func TestVisitor_TamperedCookieIsReplaced(t *testing.T) {
	first, identity := runVisitor(t, nil)

	cookies := first.Result().Cookies()
	for _, c := range cookies {
		if c.Name == uidCookieName {
			c.Value = c.Value + "x"
		}
	}

	_, again := runVisitor(t, cookies)

	assert.NotEqual(t, identity.UID, again.UID)
	assert.Equal(t, identity.DisplayName, again.DisplayName, "untouched cookie survives")
}

func TestVisitor_ExpiredCookieIsReplaced(t *testing.T) {
	exp := time.Now().Add(-time.Minute).Unix()
	stale := &http.Cookie{
		Name:  nameCookieName,
		Value: signVisitorCookie(testSecret, "Curious Sparrow-AB", exp),
	}

	_, identity := runVisitor(t, []*http.Cookie{stale})

	assert.NotEqual(t, "Curious Sparrow-AB", identity.DisplayName)
}

func TestVerifyVisitorCookie_RoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	signed := signVisitorCookie(testSecret, "Warm Harbor-0F", exp)

	value, ok := verifyVisitorCookie(testSecret, signed)
	require.True(t, ok)
	assert.Equal(t, "Warm Harbor-0F", value)

	_, ok = verifyVisitorCookie("other-secret", signed)
	assert.False(t, ok)

	_, ok = verifyVisitorCookie(testSecret, "not-a-cookie")
	assert.False(t, ok)
}

func TestGenerateGuestName_UsesWordLists(t *testing.T) {
	seen := map[string]bool{}
	pattern := regexp.MustCompile(`^([A-Za-z]+) ([A-Za-z]+)-([0-9A-F]{2})$`)

	for i := 0; i < 50; i++ {
		name := generateGuestName()
		m := pattern.FindStringSubmatch(name)
		require.NotNil(t, m, "unexpected name %q", name)
		assert.Contains(t, guestAdjectives, m[1])
		assert.Contains(t, guestNouns, m[2])
		seen[name] = true
	}

	assert.Greater(t, len(seen), 1, "names should vary")
}

func TestPickWord_EveryWordReachable(t *testing.T) {
	// With uniform draws over 9 words, 600 rounds miss a word with
	// probability ~1e-30; a miss means the sampling is skewed or truncated.
	seen := map[string]int{}
	for i := 0; i < 600; i++ {
		seen[pickWord(guestAdjectives)]++
	}

	for _, w := range guestAdjectives {
		assert.Greater(t, seen[w], 0, "word %q never drawn", w)
	}
}
