package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/events"
	"goodsmarket/internal/models"
)

const (
	basketCookieName   = "goods_cookies"
	basketCookieMaxAge = 7200
)

// BasketHandler is the basket resource. Every operation resolves the basket
// from the URL and rejects callers who do not own it.
type BasketHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

func (h *BasketHandler) resolve(c echo.Context) (*models.Basket, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid basket id")
	}

	var basket models.Basket
	if err := h.DB.First(&basket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "basket not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	userID, _ := auth.CallerID(c)
	if basket.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Incorrect url")
	}
	return &basket, nil
}

func (h *BasketHandler) lines(basketID uint) ([]models.BasketItem, error) {
	var items []models.BasketItem
	err := h.DB.Where("basket_id = ?", basketID).
		Preload("Product").
		Preload("Product.Seller").
		Preload("Product.Tags").
		Find(&items).Error
	return items, err
}

// GetBasket lists the lines with embedded products and the recomputed total.
// The same payload is mirrored into a short-lived client-side cookie; the
// cookie is never read back as a source of truth.
func (h *BasketHandler) GetBasket(c echo.Context) error {
	basket, err := h.resolve(c)
	if err != nil {
		return err
	}
	return h.render(c, basket)
}

func (h *BasketHandler) render(c echo.Context, basket *models.Basket) error {
	items, err := h.lines(basket.ID)
	if err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	total := 0
	for _, item := range items {
		if item.Product != nil {
			total += item.Quantity * item.Product.Price
		}
	}

	data := echo.Map{
		"chosen items": NewBasketItemViews(items),
		"Total":        total,
	}

	if encoded, err := json.Marshal(data); err == nil {
		c.SetCookie(&http.Cookie{
			Name:   basketCookieName,
			Value:  url.QueryEscape(string(encoded)),
			Path:   "/",
			MaxAge: basketCookieMaxAge,
		})
	}

	return c.JSON(http.StatusOK, data)
}

// AddToBasket appends one line for the given product. Lines are never
// merged: a second PUT for the same product creates a second row.
func (h *BasketHandler) AddToBasket(c echo.Context) error {
	basket, err := h.resolve(c)
	if err != nil {
		return err
	}

	var req struct {
		Goods    *uint `json:"goods"`
		Quantity *int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Error")
	}
	if req.Goods == nil || req.Quantity == nil || *req.Quantity < 1 {
		return message(c, http.StatusBadRequest, "Error")
	}

	var product models.Product
	if err := h.DB.First(&product, *req.Goods).Error; err != nil {
		return message(c, http.StatusBadRequest, "Error")
	}

	item := models.BasketItem{
		BasketID:  basket.ID,
		ProductID: product.ID,
		Quantity:  *req.Quantity,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "basket_events", map[string]any{
		"type":      "basket_item_added",
		"userID":    basket.UserID,
		"productID": product.ID,
		"quantity":  item.Quantity,
	})

	return h.render(c, basket)
}

// ClearBasket removes every line but keeps the basket row itself.
func (h *BasketHandler) ClearBasket(c echo.Context) error {
	basket, err := h.resolve(c)
	if err != nil {
		return err
	}

	if err := h.DB.Where("basket_id = ?", basket.ID).Delete(&models.BasketItem{}).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "basket_events", map[string]any{
		"type":   "basket_cleared",
		"userID": basket.UserID,
	})

	return c.Redirect(http.StatusFound, c.Request().URL.RequestURI())
}
