package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/events"
	"goodsmarket/internal/models"
)

// CommentHandler is the single-comment resource addressed by
// (product id, comment id). The ownership guard runs before method dispatch,
// so even GET is denied to anyone but the author.
type CommentHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

func (h *CommentHandler) resolve(c echo.Context) (*models.Comment, error) {
	productID, err := paramID(c, "id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	commentID, err := paramID(c, "commentID")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid comment id")
	}

	var comment models.Comment
	err = h.DB.Where("id = ? AND product_id = ?", commentID, productID).
		Preload("User").
		Preload("Product").
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "comment not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return &comment, nil
}

func (h *CommentHandler) guard(c echo.Context, comment *models.Comment) error {
	userID, _ := auth.CallerID(c)
	if userID != comment.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can not change this comment")
	}
	return nil
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.guard(c, comment); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewCommentView(comment))
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	comment, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.guard(c, comment); err != nil {
		return err
	}

	var req struct {
		Text   string `json:"comment"`
		Assess *int   `json:"assess"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	if req.Assess == nil || *req.Assess < 0 || *req.Assess > 10 || req.Text == "" {
		return message(c, http.StatusBadRequest, "Incorrect data")
	}

	comment.Text = req.Text
	comment.Assess = *req.Assess
	if err := h.DB.Save(comment).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "comment_events", map[string]any{
		"type":      "comment_updated",
		"userID":    comment.UserID,
		"commentID": comment.ID,
	})

	return c.JSON(http.StatusOK, NewCommentView(comment))
}

// DeleteComment removes the comment and redirects one path segment up, back
// to the parent detail collection.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	comment, err := h.resolve(c)
	if err != nil {
		return err
	}
	if err := h.guard(c, comment); err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return message(c, http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "comment_events", map[string]any{
		"type":      "comment_deleted",
		"userID":    comment.UserID,
		"commentID": comment.ID,
	})

	parent := c.Request().URL.Path
	if i := strings.LastIndex(strings.TrimSuffix(parent, "/"), "/"); i > 0 {
		parent = parent[:i]
	}
	return c.Redirect(http.StatusFound, parent)
}
