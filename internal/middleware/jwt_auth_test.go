package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, userID uint, role string) string {
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(secret, authHeader string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := JWTAuthMiddleware(secret)(next)(c)
	return c, err
}

func TestJWTAuthAcceptsConfiguredSecret(t *testing.T) {
	t.Parallel()
	token := signToken(t, "configured-secret", 7, models.RoleAdmin)

	c, err := runMiddleware("configured-secret", "Bearer "+token)
	require.NoError(t, err)
	require.Equal(t, uint(7), c.Get("userID"))
	require.Equal(t, models.RoleAdmin, c.Get("userRole"))
}

func TestJWTAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Parallel()
	token := signToken(t, "some-other-secret", 7, models.RoleUser)

	_, err := runMiddleware("configured-secret", "Bearer "+token)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	t.Parallel()
	_, err := runMiddleware("configured-secret", "")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
