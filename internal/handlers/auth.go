package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/events"
	"goodsmarket/internal/hash"
	"goodsmarket/internal/models"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *auth.TokenService
	Producer events.Publisher
}

// Register creates the user and their basket together. Every account owns
// exactly one active basket from the moment it exists.
func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return message(c, http.StatusBadRequest, "username and password required")
	}

	var existing models.User
	if err := h.DB.Where("username = ?", req.Username).First(&existing).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		return message(c, http.StatusBadRequest, "user already exists")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
		Role:         "user",
	}
	var basket models.Basket
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		basket = models.Basket{UserID: user.ID, Active: true}
		return tx.Create(&basket).Error
	})
	if err != nil {
		return message(c, http.StatusBadRequest, "could not register user")
	}

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"message": "User Created Successfully.  Now perform Login to get your token",
		"basket":  basket,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusUnauthorized, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return message(c, http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return message(c, http.StatusUnauthorized, "invalid username or password")
	}

	accessToken, err := h.Tokens.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return message(c, http.StatusInternalServerError, "could not create access token")
	}
	refreshToken, err := h.Tokens.SignRefreshToken(user.ID, user.Role)
	if err != nil {
		return message(c, http.StatusInternalServerError, "could not create refresh token")
	}

	c.SetCookie(auth.CreateCookie(auth.AccessCookie, accessToken, "/", time.Now().Add(auth.AccessTTL)))
	c.SetCookie(auth.CreateCookie(auth.RefreshCookie, refreshToken, "/", time.Now().Add(auth.RefreshTTL)))

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"is_admin":      user.Role == "admin",
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie(auth.RefreshCookie)
	if err != nil {
		return message(c, http.StatusBadRequest, "refresh token missing")
	}

	if err := h.Tokens.Revoke(refreshCookie.Value); err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(auth.CreateCookie(auth.AccessCookie, "", "/", expired))
	c.SetCookie(auth.CreateCookie(auth.RefreshCookie, "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
