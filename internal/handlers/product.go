package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/events"
	"goodsmarket/internal/models"
)

// ProductHandler covers the seller-facing catalog CRUD. The authenticated
// caller becomes the seller on create; updates and deletes are allowed to
// the seller or an admin.
type ProductHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

type productRequest struct {
	Name        string   `json:"name"`
	Price       *int     `json:"price"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Delivery    bool     `json:"delivery"`
	Amount      *int     `json:"amount"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

func (r *productRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Price == nil || *r.Price < 0 {
		return errors.New("price must be >= 0")
	}
	if r.Amount == nil || *r.Amount < 0 {
		return errors.New("amount must be >= 0")
	}
	return nil
}

func (h *ProductHandler) tagsFor(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, "authentication required")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	product := models.Product{
		Name:        req.Name,
		Price:       *req.Price,
		URL:         req.URL,
		Description: req.Description,
		Delivery:    req.Delivery,
		Amount:      *req.Amount,
		Image:       req.Image,
		Date:        time.Now(),
		SellerID:    userID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		tags, err := h.tagsFor(tx, req.Tags)
		if err != nil {
			return err
		}
		product.Tags = tags
		return tx.Create(&product).Error
	})
	if err != nil {
		return message(c, http.StatusBadRequest, "could not create product")
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_created",
		"userID":    userID,
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, NewProductView(&product))
}

func (h *ProductHandler) guard(c echo.Context, product *models.Product) error {
	userID, _ := auth.CallerID(c)
	if product.SellerID != userID && auth.CallerRole(c) != "admin" {
		return echo.NewHTTPError(http.StatusForbidden, "not the seller of this product")
	}
	return nil
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "product not found")
		}
		return message(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.guard(c, &product); err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	product.Name = req.Name
	product.Price = *req.Price
	product.URL = req.URL
	product.Description = req.Description
	product.Delivery = req.Delivery
	product.Amount = *req.Amount
	product.Image = req.Image

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Tags != nil {
			tags, err := h.tagsFor(tx, req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return tx.Save(&product).Error
	})
	if err != nil {
		return message(c, http.StatusBadRequest, "could not update product")
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_updated",
		"userID":    product.SellerID,
		"productID": product.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, NewProductView(&product))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "product not found")
		}
		return message(c, http.StatusInternalServerError, "internal error")
	}
	if err := h.guard(c, &product); err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "product_events", map[string]any{
		"type":      "product_deleted",
		"userID":    product.SellerID,
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
