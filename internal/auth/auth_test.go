package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "super-secret-jwt-token-for-tests"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "alice@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(testSecret)
	id := uuid.NewString()

	u, err := v.Validate(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(id)))
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestValidate_Rejects(t *testing.T) {
	v := NewValidator(testSecret)
	id := uuid.NewString()

	expired := validClaims(id)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims(id)
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"wrong secret":  sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(id)),
		"wrong method":  sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(id)),
		"expired":       sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no expiry":     sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"non-uuid sub":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("alice")),
		"not a token":   "abc.def.ghi",
		"unsigned none": sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(id)),
	}
	for name, token := range cases {
		_, err := v.Validate(token)
		assert.ErrorIs(t, err, ErrUnauthorized, name)
	}

	_, err := NewValidator("").Validate(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(id)))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = BearerToken("bearer   abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, ErrUnauthorized, h)
	}
}

func TestMiddleware(t *testing.T) {
	v := NewValidator(testSecret)
	id := uuid.NewString()

	var seen User
	h := Middleware(v, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		require.True(t, ok)
		seen = u
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(id)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, seen.ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestUserFrom_Empty(t *testing.T) {
	_, ok := UserFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
