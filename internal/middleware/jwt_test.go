package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/utils"
)

const testSecret = "middleware-test-secret"

func protected(t *testing.T, roles ...model.Role) *echo.Echo {
	t.Helper()
	e := echo.New()
	handler := func(c echo.Context) error {
		id, _ := AccountID(c)
		return c.JSON(http.StatusOK, echo.Map{"account_id": id})
	}
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		mw = append(mw, RequireRole(roles...))
	}
	e.GET("/protected", handler, mw...)
	return e
}

func request(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protected(t)

	access, err := utils.NewAccessToken(testSecret, uuid.New(), model.RoleCustomer, 15)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(e, "Bearer "+access.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, "Basic "+access.Token).Code)

	// A token signed with a different secret is rejected.
	forged, err := utils.NewAccessToken("other-secret", uuid.New(), model.RoleCustomer, 15)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(e, "Bearer "+forged.Token).Code)

	// An expired token is rejected.
	expired, err := utils.NewAccessToken(testSecret, uuid.New(), model.RoleCustomer, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(e, "Bearer "+expired.Token).Code)
}

func TestRequireRole(t *testing.T) {
	e := protected(t, model.RoleOrganizer)

	organizer, err := utils.NewAccessToken(testSecret, uuid.New(), model.RoleOrganizer, 15)
	require.NoError(t, err)
	customer, err := utils.NewAccessToken(testSecret, uuid.New(), model.RoleCustomer, 15)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(e, "Bearer "+organizer.Token).Code)
	assert.Equal(t, http.StatusForbidden, request(e, "Bearer "+customer.Token).Code)
}
