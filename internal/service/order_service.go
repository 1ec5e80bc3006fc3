package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"foodiego/internal/domain"
	"foodiego/internal/storage"
)

const orderNumberAttempts = 2

// OrderService runs the order-creation and pricing workflow: it validates a
// request against the catalog, snapshots line items, computes the total with
// exact decimal arithmetic, assigns an order number and manages the status
// lifecycle. Publisher and QR generator are optional; a nil value disables
// them.
type OrderService struct {
	orders      OrderRepository
	restaurants RestaurantRepository
	menuItems   MenuItemRepository
	publisher   EventPublisher
	qrEncoder   QRGenerator
}

func NewOrderService(orders OrderRepository, restaurants RestaurantRepository, menuItems MenuItemRepository, publisher EventPublisher, qr QRGenerator) *OrderService {
	return &OrderService{
		orders:      orders,
		restaurants: restaurants,
		menuItems:   menuItems,
		publisher:   publisher,
		qrEncoder:   qr,
	}
}

// Create builds and persists an order from in. Catalog reads, snapshotting,
// total computation and the order+lines insert are all-or-nothing: a missing
// menu item aborts the whole operation with nothing persisted.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurants.GetRestaurant(in.RestaurantID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		Status:          domain.StatusPending,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	total := decimal.Zero
	for _, item := range in.Items {
		menuItem, err := s.menuItems.GetMenuItem(item.MenuItemID)
		if err != nil {
			return nil, err
		}

		line := domain.OrderLine{
			MenuItemID:  menuItem.ID,
			Name:        menuItem.Name,
			Description: menuItem.Description,
			Price:       menuItem.Price,
			Image:       menuItem.Image,
			Category:    menuItem.Category,
			Quantity:    item.Quantity,
		}
		order.Lines = append(order.Lines, line)
		total = total.Add(line.LineTotal())
	}

	total = total.Add(restaurant.DeliveryFee)
	if total.IsNegative() {
		return nil, fmt.Errorf("computed total %s is negative: %w", total, domain.ErrInternal)
	}
	order.Total = total

	// The unique constraint on order_number is the authoritative guard; a
	// collision gets one fresh number before the conflict is surfaced.
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()
		err = s.orders.InsertOrder(order)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if s.qrEncoder != nil {
		if qr, qrErr := s.qrEncoder.Generate(order.OrderNumber); qrErr == nil {
			if saveErr := s.orders.SaveQRCode(order.ID, qr); saveErr != nil {
				log.Printf("[foodiego] WARNING: failed to store QR code for order %s: %v", order.OrderNumber, saveErr)
			}
		} else {
			log.Printf("[foodiego] WARNING: failed to generate QR code for order %s: %v", order.OrderNumber, qrErr)
		}
	}

	s.publishEvent(ctx, "created", order)

	return order, nil
}

// UpdateStatus overwrites the order's status and bumps updated_at. Any known
// status may replace any other; total and lines are untouched.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrValidation)
	}

	order, err := s.orders.GetOrder(id)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.UpdateOrder(order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, "status_changed", order)

	return order, nil
}

// Delete removes the order and all its lines.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	order, err := s.orders.GetOrder(id)
	if err != nil {
		return err
	}

	rows, err := s.orders.DeleteOrder(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order not found with id: %d: %w", id, domain.ErrNotFound)
	}

	s.publishEvent(ctx, "deleted", order)

	return nil
}

func (s *OrderService) Get(id int64) (*domain.Order, error) {
	return s.orders.GetOrder(id)
}

func (s *OrderService) GetByNumber(orderNumber string) (*domain.Order, error) {
	return s.orders.GetOrderByNumber(orderNumber)
}

func (s *OrderService) List() ([]domain.Order, error) {
	return s.orders.ListOrders()
}

func (s *OrderService) ListByRestaurant(restaurantID int64) ([]domain.Order, error) {
	return s.orders.ListOrdersByRestaurant(restaurantID)
}

func (s *OrderService) ListByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrValidation)
	}
	return s.orders.ListOrdersByStatus(status)
}

func (s *OrderService) GetQRCode(id int64) ([]byte, error) {
	qr, err := s.orders.GetQRCode(id)
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		order, err := s.orders.GetOrder(id)
		if err != nil {
			return nil, err
		}
		if regenerated, err := s.qrEncoder.Generate(order.OrderNumber); err == nil {
			if saveErr := s.orders.SaveQRCode(id, regenerated); saveErr != nil {
				log.Printf("[foodiego] WARNING: failed to cache regenerated QR code: %v", saveErr)
			}
			return regenerated, nil
		}
	}
	return qr, nil
}

// publishEvent emits a best-effort order event; failures are logged, never
// surfaced.
func (s *OrderService) publishEvent(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := storage.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		Total:        order.Total.StringFixed(2),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("[foodiego] WARNING: failed to publish %s event for order %s: %v", eventType, order.OrderNumber, err)
	}
}

// validateCreateOrder re-checks what the HTTP layer already validated, for
// the sake of direct callers.
func validateCreateOrder(in CreateOrderInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return fmt.Errorf("customer name is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return fmt.Errorf("customer phone is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(in.CustomerAddress) == "" {
		return fmt.Errorf("customer address is required: %w", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("order must contain at least one item: %w", domain.ErrValidation)
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("quantity must be positive for menu item %d: %w", item.MenuItemID, domain.ErrValidation)
		}
	}
	return nil
}

// newOrderNumber derives the human-facing order number from a fresh random
// UUID: ORD- plus its first 8 hex characters, uppercased.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
