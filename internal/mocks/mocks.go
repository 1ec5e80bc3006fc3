// Package mocks provides testify mocks for the repository, cache and
// publisher interfaces consumed by the service layer.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"foodiego/internal/domain"
	"foodiego/internal/service"
	"foodiego/internal/storage"
)

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t *testing.T) *OrderRepository {
	m := &OrderRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderRepository) InsertOrder(o *domain.Order) error {
	return m.Called(o).Error(0)
}

func (m *OrderRepository) GetOrder(id int64) (*domain.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) GetOrderByNumber(orderNumber string) (*domain.Order, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *OrderRepository) ListOrders() ([]domain.Order, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *OrderRepository) ListOrdersByRestaurant(restaurantID int64) ([]domain.Order, error) {
	args := m.Called(restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *OrderRepository) ListOrdersByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *OrderRepository) UpdateOrder(o *domain.Order) error {
	return m.Called(o).Error(0)
}

func (m *OrderRepository) DeleteOrder(id int64) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepository) SaveQRCode(orderID int64, qr []byte) error {
	return m.Called(orderID, qr).Error(0)
}

func (m *OrderRepository) GetQRCode(orderID int64) ([]byte, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type RestaurantRepository struct {
	mock.Mock
}

func NewRestaurantRepository(t *testing.T) *RestaurantRepository {
	m := &RestaurantRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RestaurantRepository) InsertRestaurant(rest *domain.Restaurant) error {
	return m.Called(rest).Error(0)
}

func (m *RestaurantRepository) ListRestaurants() ([]domain.Restaurant, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Restaurant), args.Error(1)
}

func (m *RestaurantRepository) GetRestaurant(id int64) (*domain.Restaurant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *RestaurantRepository) GetRestaurantByOwner(ownerID int64) (*domain.Restaurant, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}

func (m *RestaurantRepository) UpdateRestaurant(rest *domain.Restaurant) error {
	return m.Called(rest).Error(0)
}

func (m *RestaurantRepository) DeleteRestaurant(id int64) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

type MenuItemRepository struct {
	mock.Mock
}

func NewMenuItemRepository(t *testing.T) *MenuItemRepository {
	m := &MenuItemRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MenuItemRepository) InsertMenuItem(item *domain.MenuItem) error {
	return m.Called(item).Error(0)
}

func (m *MenuItemRepository) ListMenuItems(restaurantID int64) ([]domain.MenuItem, error) {
	args := m.Called(restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

func (m *MenuItemRepository) GetMenuItem(id int64) (*domain.MenuItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MenuItem), args.Error(1)
}

func (m *MenuItemRepository) UpdateMenuItem(item *domain.MenuItem) error {
	return m.Called(item).Error(0)
}

func (m *MenuItemRepository) DeleteMenuItem(id int64) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func NewUserRepository(t *testing.T) *UserRepository {
	m := &UserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserRepository) InsertUser(u *domain.User) error {
	return m.Called(u).Error(0)
}

func (m *UserRepository) GetUserByID(id int64) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetUserByUsername(username string) (*domain.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) UsernameExists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) EmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

type MenuCache struct {
	mock.Mock
}

func NewMenuCache(t *testing.T) *MenuCache {
	m := &MenuCache{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MenuCache) Get(ctx context.Context, restaurantID int64) ([]domain.MenuItem, bool) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]domain.MenuItem), args.Bool(1)
}

func (m *MenuCache) Set(ctx context.Context, restaurantID int64, items []domain.MenuItem) error {
	return m.Called(ctx, restaurantID, items).Error(0)
}

func (m *MenuCache) Invalidate(ctx context.Context, restaurantID int64) error {
	return m.Called(ctx, restaurantID).Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t *testing.T) *EventPublisher {
	m := &EventPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) PublishOrderEvent(ctx context.Context, event storage.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func NewQRGenerator(t *testing.T) *QRGenerator {
	m := &QRGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *QRGenerator) Generate(orderNumber string) ([]byte, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	_ service.OrderRepository      = (*OrderRepository)(nil)
	_ service.RestaurantRepository = (*RestaurantRepository)(nil)
	_ service.MenuItemRepository   = (*MenuItemRepository)(nil)
	_ service.UserRepository       = (*UserRepository)(nil)
	_ service.MenuCache            = (*MenuCache)(nil)
	_ service.EventPublisher       = (*EventPublisher)(nil)
	_ service.QRGenerator          = (*QRGenerator)(nil)
)
