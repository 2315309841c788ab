package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/models"
	"goodsmarket/internal/util"
)

type HomeHandler struct {
	DB *gorm.DB
}

// Home lists recent products. A ?search= filter matches on name and ignores
// the recency window entirely.
func (h *HomeHandler) Home(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Product{})
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	} else {
		weekAgo := time.Now().AddDate(0, 0, -7)
		query = query.Where("date >= ? AND date <= ?", weekAgo, time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	var products []models.Product
	if err := query.Order("id ASC").
		Offset(offset).Limit(limit).
		Preload("Seller").Preload("Tags").
		Find(&products).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	basketURL := "You are not register"
	if userID, ok := auth.CallerID(c); ok {
		var basket models.Basket
		if err := h.DB.Where("user_id = ?", userID).First(&basket).Error; err == nil {
			basketURL = fmt.Sprintf("/api/basket/%d/", basket.ID)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":      total,
		"results":    NewProductViews(products),
		"basket_url": basketURL,
	})
}

// RecordSearch persists the submitted free-text query.
func (h *HomeHandler) RecordSearch(c echo.Context) error {
	var req struct {
		Q string `json:"q"`
	}
	if err := c.Bind(&req); err != nil || req.Q == "" {
		return message(c, http.StatusBadRequest, "q is required")
	}

	search := models.Search{Q: req.Q}
	if err := h.DB.Create(&search).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, search)
}
