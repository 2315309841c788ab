package handlers

import (
	"fmt"
	"time"

	"goodsmarket/internal/models"
)

type TagView struct {
	Tag string `json:"tag"`
	URL string `json:"Tag_url"`
}

type ProductView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Delivery    bool      `json:"delivery"`
	Amount      int       `json:"amount"`
	Image       string    `json:"image"`
	Date        time.Time `json:"date"`
	Seller      string    `json:"seller"`
	Tags        []TagView `json:"tags"`
}

func NewProductView(p *models.Product) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		URL:         p.URL,
		Description: p.Description,
		Delivery:    p.Delivery,
		Amount:      p.Amount,
		Image:       p.Image,
		Date:        p.Date,
		Tags:        []TagView{},
	}
	if p.Seller != nil {
		v.Seller = p.Seller.Username
	}
	for _, t := range p.Tags {
		v.Tags = append(v.Tags, TagView{
			Tag: t.Name,
			URL: fmt.Sprintf("/api/tags/%s/", t.Name),
		})
	}
	return v
}

func NewProductViews(products []models.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = NewProductView(&products[i])
	}
	return views
}

// RefView is the short {id, name} shape the comment payload embeds for its
// author and target product.
type RefView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CommentView struct {
	ID     uint      `json:"id"`
	User   RefView   `json:"user"`
	Good   RefView   `json:"good"`
	Assess int       `json:"assess"`
	Text   string    `json:"comment"`
	Date   time.Time `json:"date"`
}

func NewCommentView(cm *models.Comment) CommentView {
	v := CommentView{
		ID:     cm.ID,
		Assess: cm.Assess,
		Text:   cm.Text,
		Date:   cm.Date,
	}
	if cm.User != nil {
		v.User = RefView{ID: cm.User.ID, Name: cm.User.Username}
	}
	if cm.Product != nil {
		v.Good = RefView{ID: cm.Product.ID, Name: cm.Product.Name}
	}
	return v
}

func NewCommentViews(comments []models.Comment) []CommentView {
	views := make([]CommentView, len(comments))
	for i := range comments {
		views[i] = NewCommentView(&comments[i])
	}
	return views
}

type BasketItemView struct {
	ID       uint        `json:"id"`
	Basket   uint        `json:"basket"`
	Goods    ProductView `json:"goods"`
	Quantity int         `json:"quantity"`
}

func NewBasketItemView(item *models.BasketItem) BasketItemView {
	v := BasketItemView{
		ID:       item.ID,
		Basket:   item.BasketID,
		Quantity: item.Quantity,
	}
	if item.Product != nil {
		v.Goods = NewProductView(item.Product)
	}
	return v
}

func NewBasketItemViews(items []models.BasketItem) []BasketItemView {
	views := make([]BasketItemView, len(items))
	for i := range items {
		views[i] = NewBasketItemView(&items[i])
	}
	return views
}
