package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"goodsmarket/internal/models"
)

func TestRegisterCreatesBasket(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/registration", map[string]string{
		"username":   "testuser",
		"password":   "testpassword",
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Contains(t, body, "user")
	require.Contains(t, body, "basket")

	var user models.User
	require.NoError(t, env.DB.Where("username = ?", "testuser").First(&user).Error)

	var basket models.Basket
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&basket).Error)
	require.True(t, basket.Active)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{"username": "testuser", "password": "pw"}
	rec := env.request(http.MethodPost, "/api/registration", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodPost, "/api/registration", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	env.DB.Model(&models.Basket{}).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestLoginSetsCookies(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("testuser")

	rec := env.request(http.MethodPost, "/api/login", map[string]string{
		"username": "testuser",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	names := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("testuser")

	rec := env.request(http.MethodPost, "/api/login", map[string]string{
		"username": "testuser",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("testuser")

	rec := env.request(http.MethodPost, "/api/login", map[string]string{
		"username": "testuser",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var refresh *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "refreshToken" {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	rec = env.request(http.MethodPost, "/api/logout", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", refresh.Value).First(&stored).Error)
	require.True(t, stored.Revoked)
}
