package middleware

import (
	"crypto/ecdsa"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/model"
	"taskhub/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func keys(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, jwt.WriteKeyPair(dir))

	priv, err := jwt.LoadECDSAPrivateKey(filepath.Join(dir, jwt.PrivateKeyFile))
	require.NoError(t, err)

	pub, err := jwt.LoadECDSAPublicKey(filepath.Join(dir, jwt.PublicKeyFile))
	require.NoError(t, err)

	return priv, pub
}

func TestJWTAuth(t *testing.T) {
	priv, pub := keys(t)
	userID := uuid.New()

	valid, err := jwt.NewToken(priv, time.Minute,
		jwt.WithClaim(model.UserUIDKey, userID.String()),
		jwt.WithClaim(model.UserNameKey, "ada"),
	)
	require.NoError(t, err)

	expired, err := jwt.NewToken(priv, -time.Minute, jwt.WithClaim(model.UserUIDKey, userID.String()))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuth(pub), func(c *gin.Context) {
		c.String(http.StatusOK, "%v|%v", c.GetString(model.UserUIDKey), c.GetString(model.UserNameKey))
	})

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{
			name:   "bearer",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			status: http.StatusOK,
		},
		{
			name:   "cookie",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access", Value: valid}) },
			status: http.StatusOK,
		},
		{
			name:   "query",
			setup:  func(r *http.Request) { r.URL.RawQuery = "token=" + valid },
			status: http.StatusOK,
		},
		{
			name:   "missing",
			setup:  func(*http.Request) {},
			status: http.StatusUnauthorized,
		},
		{
			name:   "expired",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "garbage",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") },
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String()+"|ada", rec.Body.String())
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(50 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.Status(http.StatusGatewayTimeout)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
