package service

import (
	"context"

	"github.com/shopspring/decimal"

	"foodiego/internal/domain"
	"foodiego/internal/storage"
)

type UserRepository interface {
	InsertUser(u *domain.User) error
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
}

type RestaurantRepository interface {
	InsertRestaurant(rest *domain.Restaurant) error
	ListRestaurants() ([]domain.Restaurant, error)
	GetRestaurant(id int64) (*domain.Restaurant, error)
	GetRestaurantByOwner(ownerID int64) (*domain.Restaurant, error)
	UpdateRestaurant(rest *domain.Restaurant) error
	DeleteRestaurant(id int64) (int64, error)
}

type MenuItemRepository interface {
	InsertMenuItem(item *domain.MenuItem) error
	ListMenuItems(restaurantID int64) ([]domain.MenuItem, error)
	GetMenuItem(id int64) (*domain.MenuItem, error)
	UpdateMenuItem(item *domain.MenuItem) error
	DeleteMenuItem(id int64) (int64, error)
}

type OrderRepository interface {
	InsertOrder(o *domain.Order) error
	GetOrder(id int64) (*domain.Order, error)
	GetOrderByNumber(orderNumber string) (*domain.Order, error)
	ListOrders() ([]domain.Order, error)
	ListOrdersByRestaurant(restaurantID int64) ([]domain.Order, error)
	ListOrdersByStatus(status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrder(o *domain.Order) error
	DeleteOrder(id int64) (int64, error)
	SaveQRCode(orderID int64, qr []byte) error
	GetQRCode(orderID int64) ([]byte, error)
}

type MenuCache interface {
	Get(ctx context.Context, restaurantID int64) ([]domain.MenuItem, bool)
	Set(ctx context.Context, restaurantID int64, items []domain.MenuItem) error
	Invalidate(ctx context.Context, restaurantID int64) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event storage.OrderEvent) error
}

type QRGenerator interface {
	Generate(orderNumber string) ([]byte, error)
}

// CreateOrderInput is the plain-data request for the order workflow.
type CreateOrderInput struct {
	RestaurantID    int64
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Notes           string
	Items           []OrderItemInput
}

type OrderItemInput struct {
	MenuItemID int64
	Quantity   int
}

// RestaurantPatch carries a partial update; nil means "leave unchanged".
type RestaurantPatch struct {
	Name         *string
	Image        *string
	Cuisine      *string
	Rating       *float64
	ReviewCount  *int
	DeliveryTime *string
	DeliveryFee  *decimal.Decimal
	MinOrder     *decimal.Decimal
	IsOpen       *bool
	Address      *string
}

// MenuItemPatch carries a partial update; nil means "leave unchanged".
type MenuItemPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Image        *string
	Category     *string
	IsPopular    *bool
	IsVegetarian *bool
	Available    *bool
}

var (
	_ UserRepository       = (*storage.PostgresRepository)(nil)
	_ RestaurantRepository = (*storage.PostgresRepository)(nil)
	_ MenuItemRepository   = (*storage.PostgresRepository)(nil)
	_ OrderRepository      = (*storage.PostgresRepository)(nil)
	_ MenuCache            = (*storage.RedisMenuCache)(nil)
	_ EventPublisher       = (*storage.KafkaPublisher)(nil)
)
