package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"goodsmarket/internal/models"
)

func newService(t *testing.T) *TokenService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))

	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}
}

func TestAccessTokenClaims(t *testing.T) {
	svc := newService(t)

	signed, err := svc.SignAccessToken(42, "admin")
	require.NoError(t, err)

	tok, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return svc.JWTSecret, nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "admin", claims["role"])
}

func TestRefreshRoundTrip(t *testing.T) {
	svc := newService(t)

	refresh, err := svc.SignRefreshToken(7, "user")
	require.NoError(t, err)

	var stored models.RefreshToken
	require.NoError(t, svc.DB.Where("token = ?", refresh).First(&stored).Error)
	require.Equal(t, uint(7), stored.UserID)
	require.False(t, stored.Revoked)

	claims, err := svc.ValidateRefresh(refresh)
	require.NoError(t, err)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, "refresh", claims["typ"])
}

func TestValidateRejectsAccessToken(t *testing.T) {
	svc := newService(t)

	access, err := svc.SignAccessToken(7, "user")
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(access)
	require.Error(t, err)
}

func TestRotateIssuesNewPair(t *testing.T) {
	svc := newService(t)

	refresh, err := svc.SignRefreshToken(7, "user")
	require.NoError(t, err)

	access, newRefresh, err := svc.Rotate(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEqual(t, refresh, newRefresh)

	// Both refresh tokens are stored; rotation does not revoke the old one.
	var count int64
	require.NoError(t, svc.DB.Model(&models.RefreshToken{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	_, err = svc.ValidateRefresh(newRefresh)
	require.NoError(t, err)
}

func TestRevokedTokenRejected(t *testing.T) {
	svc := newService(t)

	refresh, err := svc.SignRefreshToken(7, "user")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(refresh))

	_, err = svc.ValidateRefresh(refresh)
	require.ErrorContains(t, err, "revoked")

	_, _, err = svc.Rotate(refresh)
	require.Error(t, err)
}
