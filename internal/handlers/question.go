package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/models"
)

type QuestionHandler struct {
	DB *gorm.DB
}

// List answers with an empty object. The board is write-only over the API;
// questions are read through the back office.
func (h *QuestionHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{})
}

func (h *QuestionHandler) Create(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return message(c, http.StatusBadRequest, "text is required")
	}

	question := models.Question{
		UserID: userID,
		Text:   req.Text,
		Date:   time.Now(),
	}
	if err := h.DB.Create(&question).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, question)
}
