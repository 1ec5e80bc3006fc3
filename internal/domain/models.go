package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Restaurant struct {
	ID           int64           `json:"id"`
	OwnerID      int64           `json:"ownerId"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	Cuisine      string          `json:"cuisine"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	DeliveryTime string          `json:"deliveryTime,omitempty"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	MinOrder     decimal.Decimal `json:"minOrder"`
	IsOpen       bool            `json:"isOpen"`
	Address      string          `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type MenuItem struct {
	ID           int64           `json:"id"`
	RestaurantID int64           `json:"restaurantId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Category     string          `json:"category"`
	IsPopular    bool            `json:"isPopular"`
	IsVegetarian bool            `json:"isVegetarian"`
	Available    bool            `json:"available"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Order is the aggregate root of the ordering workflow. Its total is computed
// once at creation and never recomputed; Lines are owned by the order and are
// snapshots, not live references to menu items.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	RestaurantID    int64           `json:"restaurantId"`
	RestaurantName  string          `json:"restaurantName,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Notes           string          `json:"notes,omitempty"`
	Lines           []OrderLine     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderLine snapshots a menu item's name, description, price, image and
// category at order time. MenuItemID is kept for traceability only; later
// edits to the menu item never change the line.
type OrderLine struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"-"`
	MenuItemID  int64           `json:"menuItemId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
}

// LineTotal returns price * quantity for a single line.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
