package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"device-checkout/internal/config"
	domainUser "device-checkout/internal/domain/user"
	"device-checkout/internal/infrastructure/database/postgres"
	"device-checkout/internal/infrastructure/database/postgres/models"
	"device-checkout/internal/logger"
	"device-checkout/internal/middleware"
	"device-checkout/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("production"); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newAuthRig(t *testing.T) (*gin.Engine, *postgres.DB, domainUser.Repository) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &postgres.DB{DB: gormDB}
	require.NoError(t, db.Migrate())

	users := postgres.NewUserRepository(db)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	}

	router := gin.New()
	router.GET("/whoami", middleware.AuthMiddleware(cfg, users), func(c *gin.Context) {
		id := c.MustGet("userID").(uuid.UUID)
		c.JSON(http.StatusOK, gin.H{"id": id.String()})
	})

	return router, db, users
}

func createUser(t *testing.T, users domainUser.Repository) *domainUser.User {
	t.Helper()

	u := &domainUser.User{
		Username:       "alice",
		Email:          "alice@example.com",
		PasswordHashed: "irrelevant-here",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_AcceptsActiveAccount(t *testing.T) {
	router, _, users := newAuthRig(t)
	u := createUser(t, users)

	token, err := utils.GenerateToken(u.ID, u.Username, u.Email, "test-secret", 1)
	require.NoError(t, err)

	rec := get(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.ID.String())
}

func TestAuthMiddleware_RejectsUnknownAccount(t *testing.T) {
	router, _, _ := newAuthRig(t)

	// Valid signature, but no such user row behind it.
	token, err := utils.GenerateToken(uuid.New(), "ghost", "ghost@example.com", "test-secret", 1)
	require.NoError(t, err)

	rec := get(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsDeactivatedAccount(t *testing.T) {
	router, db, users := newAuthRig(t)
	u := createUser(t, users)

	token, err := utils.GenerateToken(u.ID, u.Username, u.Email, "test-secret", 1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(router, token).Code)

	// Deactivation takes effect immediately, not at token expiry.
	err = db.DB.Model(&models.UserModel{}).
		Where("id = ?", u.ID).
		Update("is_active", false).Error
	require.NoError(t, err)

	rec := get(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	router, _, _ := newAuthRig(t)

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
