package httpapi

import (
	"github.com/shopspring/decimal"

	"foodiego/internal/domain"
	"foodiego/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createOrderRequest struct {
	RestaurantID    int64              `json:"restaurantId" validate:"required"`
	CustomerName    string             `json:"customerName" validate:"required"`
	CustomerPhone   string             `json:"customerPhone" validate:"required"`
	CustomerAddress string             `json:"customerAddress" validate:"required"`
	Notes           string             `json:"notes"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	MenuItemID int64 `json:"menuItemId" validate:"required"`
	Quantity   int   `json:"quantity" validate:"required,min=1"`
}

func (r createOrderRequest) toInput() service.CreateOrderInput {
	in := service.CreateOrderInput{
		RestaurantID:    r.RestaurantID,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerAddress: r.CustomerAddress,
		Notes:           r.Notes,
	}
	for _, item := range r.Items {
		in.Items = append(in.Items, service.OrderItemInput{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}
	return in
}

type updateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

type createRestaurantRequest struct {
	Name         string          `json:"name" validate:"required"`
	Image        string          `json:"image"`
	Cuisine      string          `json:"cuisine" validate:"required"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	DeliveryTime string          `json:"deliveryTime"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	MinOrder     decimal.Decimal `json:"minOrder"`
	IsOpen       *bool           `json:"isOpen"`
	Address      string          `json:"address" validate:"required"`
}

func (r createRestaurantRequest) toDomain() *domain.Restaurant {
	isOpen := true
	if r.IsOpen != nil {
		isOpen = *r.IsOpen
	}
	return &domain.Restaurant{
		Name:         r.Name,
		Image:        r.Image,
		Cuisine:      r.Cuisine,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		DeliveryTime: r.DeliveryTime,
		DeliveryFee:  r.DeliveryFee,
		MinOrder:     r.MinOrder,
		IsOpen:       isOpen,
		Address:      r.Address,
	}
}

// Patch requests use pointers throughout: an absent field means "leave
// unchanged", which is different from an explicit zero.
type updateRestaurantRequest struct {
	Name         *string          `json:"name"`
	Image        *string          `json:"image"`
	Cuisine      *string          `json:"cuisine"`
	Rating       *float64         `json:"rating"`
	ReviewCount  *int             `json:"reviewCount"`
	DeliveryTime *string          `json:"deliveryTime"`
	DeliveryFee  *decimal.Decimal `json:"deliveryFee"`
	MinOrder     *decimal.Decimal `json:"minOrder"`
	IsOpen       *bool            `json:"isOpen"`
	Address      *string          `json:"address"`
}

func (r updateRestaurantRequest) toPatch() service.RestaurantPatch {
	return service.RestaurantPatch{
		Name:         r.Name,
		Image:        r.Image,
		Cuisine:      r.Cuisine,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		DeliveryTime: r.DeliveryTime,
		DeliveryFee:  r.DeliveryFee,
		MinOrder:     r.MinOrder,
		IsOpen:       r.IsOpen,
		Address:      r.Address,
	}
}

type createMenuItemRequest struct {
	RestaurantID int64           `json:"restaurantId" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Category     string          `json:"category" validate:"required"`
	IsPopular    bool            `json:"isPopular"`
	IsVegetarian bool            `json:"isVegetarian"`
	Available    *bool           `json:"available"`
}

func (r createMenuItemRequest) toDomain() *domain.MenuItem {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &domain.MenuItem{
		RestaurantID: r.RestaurantID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Image:        r.Image,
		Category:     r.Category,
		IsPopular:    r.IsPopular,
		IsVegetarian: r.IsVegetarian,
		Available:    available,
	}
}

type updateMenuItemRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Image        *string          `json:"image"`
	Category     *string          `json:"category"`
	IsPopular    *bool            `json:"isPopular"`
	IsVegetarian *bool            `json:"isVegetarian"`
	Available    *bool            `json:"available"`
}

func (r updateMenuItemRequest) toPatch() service.MenuItemPatch {
	return service.MenuItemPatch{
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Image:        r.Image,
		Category:     r.Category,
		IsPopular:    r.IsPopular,
		IsVegetarian: r.IsVegetarian,
		Available:    r.Available,
	}
}
