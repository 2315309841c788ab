package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/models"
	"goodsmarket/internal/trending"
)

// TagsHandler lists the local products carrying a tag next to the externally
// sourced trending entries for the same tag.
type TagsHandler struct {
	DB     *gorm.DB
	Trends trending.Fetcher
}

func (h *TagsHandler) FilteredByTag(c echo.Context) error {
	tag := c.Param("tag")

	var products []models.Product
	err := h.DB.
		Joins("JOIN product_tags ON product_tags.product_id = products.id").
		Joins("JOIN tags ON tags.id = product_tags.tag_id").
		Where("tags.name = ?", tag).
		Preload("Seller").
		Preload("Tags").
		Find(&products).Error
	if err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	// Trending is an enrichment; the local listing still renders when the
	// collaborator fails.
	trendItems := []trending.TrendItem{}
	if h.Trends != nil {
		items, err := h.Trends.FetchTrending(c.Request().Context(), tag)
		if err != nil {
			c.Logger().Warnf("trending fetch failed for %q: %v", tag, err)
		} else {
			trendItems = items
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"top 10 on Rozetka": trendItems,
		"Our product": echo.Map{
			"count":   len(products),
			"results": NewProductViews(products),
		},
	})
}
