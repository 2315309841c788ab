package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"           json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"             json:"id"`
	Name        string    `gorm:"not null"                             json:"name"`
	Price       int       `gorm:"not null;check:price >= 0"            json:"price"`
	URL         string    `gorm:"index"                                json:"url"`
	Description string    `gorm:"type:text"                            json:"description"`
	Delivery    bool      `gorm:"default:false"                        json:"delivery"`
	Amount      int       `gorm:"not null;default:0;check:amount >= 0" json:"amount"`
	Image       string    `json:"image"`
	Date        time.Time `gorm:"index"                                json:"date"`
	SellerID    uint      `gorm:"index;not null"                       json:"-"`
	Seller      *User     `json:"-"`
	Tags        []Tag     `gorm:"many2many:product_tags"               json:"-"`
}

type Question struct {
	ID     uint      `gorm:"primaryKey"         json:"id"`
	UserID uint      `gorm:"index;not null"     json:"user"`
	Text   string    `gorm:"type:text;not null" json:"text"`
	Date   time.Time `json:"date"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey"                                  json:"id"`
	UserID    uint      `gorm:"index;not null"                              json:"-"`
	ProductID uint      `gorm:"index;not null"                              json:"-"`
	Assess    int       `gorm:"not null;check:assess >= 0 AND assess <= 10" json:"assess"`
	Text      string    `gorm:"column:comment;type:text;not null"           json:"comment"`
	Date      time.Time `json:"date"`
	User      *User     `json:"-"`
	Product   *Product  `json:"-"`
}

// Basket persists one row per user for the lifetime of the account. The
// unique index is what enforces the one-basket-per-user rule.
type Basket struct {
	ID     uint `gorm:"primaryKey"           json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user"`
	Active bool `gorm:"default:false"        json:"active"`
}

// BasketItem keeps the column default at 0; every API path that creates a
// line enforces quantity >= 1 before the row exists.
type BasketItem struct {
	ID        uint     `gorm:"primaryKey"     json:"id"`
	BasketID  uint     `gorm:"index;not null" json:"basket"`
	ProductID uint     `gorm:"not null"       json:"-"`
	Quantity  int      `gorm:"default:0"      json:"quantity"`
	Product   *Product `json:"goods,omitempty"`
}

type Search struct {
	ID uint   `gorm:"primaryKey" json:"id"`
	Q  string `gorm:"type:text"  json:"q"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}
