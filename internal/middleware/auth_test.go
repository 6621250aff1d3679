package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
)

func newAuthRouter(tokens *TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(42))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/me", RequireAuth(tokens), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return r
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret")

	token, expiresAt, err := tokens.GenerateToken(7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, time.Minute)

	userID, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)
}

func TestTokenManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	tokens := NewTokenManager("test-secret")
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.SetClock(func() time.Time { return issued })

	token, _, err := tokens.GenerateToken(7)
	require.NoError(t, err)

	tokens.SetClock(func() time.Time { return issued.Add(TokenTTL + time.Minute) })
	_, err = tokens.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other-secret")
	foreign, _, err := other.GenerateToken(7)
	require.NoError(t, err)
	_, err = NewTokenManager("test-secret").ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenManager("test-secret").ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireAuth_BearerToken(t *testing.T) {
	tokens := NewTokenManager("test-secret")
	r := newAuthRouter(tokens)

	token, _, err := tokens.GenerateToken(99)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":99}`, w.Body.String())
}

func TestRequireAuth_Session(t *testing.T) {
	r := newAuthRouter(NewTokenManager("test-secret"))

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42}`, w.Body.String())
}

func TestRequireAuth_Rejects(t *testing.T) {
	r := newAuthRouter(NewTokenManager("test-secret"))

	cases := map[string]string{
		"no credentials":   "",
		"malformed header": "Token abc",
		"bad token":        "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}
