package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/events"
	"goodsmarket/internal/models"
)

// DetailsHandler serves a product's detail page and the combined
// comment-and-add-to-basket submission against it.
type DetailsHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

// submitKind tags which branch of the combined submission applies. The
// branch is decided by basket membership, never by inspecting payload shape.
type submitKind int

const (
	// submitCommentAndBasket: product not yet in the caller's basket; the
	// payload carries both a comment and a quantity under prefixed keys.
	submitCommentAndBasket submitKind = iota
	// submitCommentOnly: product already in the basket; plain comment keys.
	submitCommentOnly
)

type commentInput struct {
	Assess *int
	Text   string
}

func (in commentInput) validate() error {
	if in.Assess == nil {
		return errors.New("assess is required")
	}
	if *in.Assess < 0 || *in.Assess > 10 {
		return errors.New("assess must be within [0,10]")
	}
	if in.Text == "" {
		return errors.New("comment is required")
	}
	return nil
}

type basketInput struct {
	Quantity *int
}

func (in basketInput) validate() error {
	if in.Quantity == nil {
		return errors.New("quantity is required")
	}
	if *in.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}

// submitOutcome carries both sub-results of the two-phase write. Either
// field may be nil; a persisted comment with a nil item is a valid partial
// outcome and is never rolled back.
type submitOutcome struct {
	Comment *models.Comment
	Item    *models.BasketItem
}

func (h *DetailsHandler) loadProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := h.DB.Preload("Seller").Preload("Tags").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (h *DetailsHandler) inBasket(basketID, productID uint) bool {
	var item models.BasketItem
	err := h.DB.Where("basket_id = ? AND product_id = ?", basketID, productID).First(&item).Error
	return err == nil
}

// GetDetails returns the product, its comments newest-first, and, for an
// authenticated caller, whether the product already sits in their basket.
func (h *DetailsHandler) GetDetails(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}

	product, err := h.loadProduct(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "product not found")
		}
		return message(c, http.StatusInternalServerError, "internal error")
	}

	var comments []models.Comment
	if err := h.DB.Where("product_id = ?", product.ID).
		Order("date DESC").
		Preload("User").
		Preload("Product").
		Find(&comments).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	data := echo.Map{
		"good":     NewProductView(product),
		"comments": NewCommentViews(comments),
	}

	if userID, ok := auth.CallerID(c); ok {
		var basket models.Basket
		if err := h.DB.Where("user_id = ?", userID).First(&basket).Error; err == nil {
			if h.inBasket(basket.ID, product.ID) {
				data["Product"] = "Is already added to the basket"
			}
		}
	}

	c.Response().Header().Set("Allow", "GET, POST, HEAD, OPTIONS")
	return c.JSON(http.StatusOK, data)
}

// PostDetails accepts the combined submission. The comment is validated and
// persisted first; only then is the basket line attempted. A comment that
// lands without its basket line stays — the write is two-phase, not atomic.
func (h *DetailsHandler) PostDetails(c echo.Context) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return message(c, http.StatusUnauthorized, "authentication required")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}
	product, err := h.loadProduct(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "product not found")
		}
		return message(c, http.StatusInternalServerError, "internal error")
	}

	var basket models.Basket
	if err := h.DB.Where("user_id = ?", userID).First(&basket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message(c, http.StatusNotFound, "basket not found")
		}
		return message(c, http.StatusInternalServerError, "internal error")
	}

	kind := submitCommentAndBasket
	if h.inBasket(basket.ID, product.ID) {
		kind = submitCommentOnly
	}

	var req struct {
		PrefixedAssess   *int   `json:"serializer1.assess"`
		PrefixedComment  string `json:"serializer1.comment"`
		PrefixedQuantity *int   `json:"serializer2.quantity"`
		Assess           *int   `json:"assess"`
		Comment          string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Incorrect data")
	}

	var comment commentInput
	var line basketInput
	switch kind {
	case submitCommentAndBasket:
		comment = commentInput{Assess: req.PrefixedAssess, Text: req.PrefixedComment}
		line = basketInput{Quantity: req.PrefixedQuantity}
	case submitCommentOnly:
		comment = commentInput{Assess: req.Assess, Text: req.Comment}
	}

	outcome := h.submit(c, kind, userID, product, &basket, comment, line)

	if outcome.Comment != nil {
		target := fmt.Sprintf("/api/details/%d/%d", product.ID, outcome.Comment.ID)
		return c.Redirect(http.StatusFound, target)
	}
	if outcome.Item != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "Item is added to your basket"})
	}
	return message(c, http.StatusBadRequest, "Incorrect data")
}

func (h *DetailsHandler) submit(c echo.Context, kind submitKind, userID uint, product *models.Product, basket *models.Basket, comment commentInput, line basketInput) submitOutcome {
	var outcome submitOutcome

	if comment.validate() == nil {
		cm := models.Comment{
			UserID:    userID,
			ProductID: product.ID,
			Assess:    *comment.Assess,
			Text:      comment.Text,
			Date:      time.Now(),
		}
		if err := h.DB.Create(&cm).Error; err == nil {
			outcome.Comment = &cm
			publish(c, h.Producer, "comment_events", map[string]any{
				"type":      "comment_created",
				"userID":    userID,
				"productID": product.ID,
				"commentID": cm.ID,
			})
		}
	}

	if kind == submitCommentAndBasket && line.validate() == nil {
		item := models.BasketItem{
			BasketID:  basket.ID,
			ProductID: product.ID,
			Quantity:  *line.Quantity,
		}
		if err := h.DB.Create(&item).Error; err == nil {
			outcome.Item = &item
			publish(c, h.Producer, "basket_events", map[string]any{
				"type":      "basket_item_added",
				"userID":    userID,
				"productID": product.ID,
				"quantity":  item.Quantity,
			})
		}
	}

	return outcome
}
