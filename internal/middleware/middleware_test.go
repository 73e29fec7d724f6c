package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gym_manager/internal/models"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubUsers map[uint]*models.User

func (s stubUsers) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 500 {
		return nil, errors.New("connection reset")
	}
	user, ok := s[id]
	if !ok {
		return nil, &services.NotFoundError{Entity: "user", ID: id}
	}
	return user, nil
}

func newEngine(users AdminUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(time.Second), AdminIdentity(users))
	r.GET("/whoami", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"admin_id": AdminID(c), "deadline": hasDeadline})
	})
	return r
}

func TestAdminIdentity(t *testing.T) {
	r := newEngine(stubUsers{
		1: {ID: 1, IsActive: true},
		2: {ID: 2, IsActive: false},
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"-1", http.StatusUnauthorized},
		{"7", http.StatusUnauthorized},
		{"2", http.StatusForbidden},
		{"500", http.StatusInternalServerError},
		{"1", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set(AdminHeader, tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "header %q", tc.header)
		if tc.want == http.StatusOK {
			assert.JSONEq(t, `{"admin_id":1,"deadline":true}`, w.Body.String())
		}
	}
}

func TestAdminIDOutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, AdminID(c))
}

func TestTimeoutDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"deadline":false}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminIdentity(stubUsers{
		1: {ID: 1, Role: string(models.SuperAdmin), IsActive: true},
		2: {ID: 2, Role: string(models.Admin), IsActive: true},
		3: {ID: 3, Role: string(models.Staff), IsActive: true},
	}))
	r.DELETE("/members/1", RequireRole(models.SuperAdmin, models.Admin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for header, want := range map[string]int{
		"1": http.StatusNoContent,
		"2": http.StatusNoContent,
		"3": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/members/1", nil)
		req.Header.Set(AdminHeader, header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "admin %s", header)
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users", RequireRole(models.SuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
