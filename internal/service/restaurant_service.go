package service

import (
	"fmt"
	"strings"
	"time"

	"foodiego/internal/domain"
)

type RestaurantService struct {
	restaurants RestaurantRepository
	users       UserRepository
}

func NewRestaurantService(restaurants RestaurantRepository, users UserRepository) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, users: users}
}

func (s *RestaurantService) List() ([]domain.Restaurant, error) {
	return s.restaurants.ListRestaurants()
}

func (s *RestaurantService) Get(id int64) (*domain.Restaurant, error) {
	return s.restaurants.GetRestaurant(id)
}

func (s *RestaurantService) GetByOwner(ownerID int64) (*domain.Restaurant, error) {
	return s.restaurants.GetRestaurantByOwner(ownerID)
}

// Create ties a new restaurant to its owner; the owner must exist.
func (s *RestaurantService) Create(rest *domain.Restaurant, ownerID int64) (*domain.Restaurant, error) {
	if strings.TrimSpace(rest.Name) == "" {
		return nil, fmt.Errorf("restaurant name is required: %w", domain.ErrValidation)
	}
	if rest.DeliveryFee.IsNegative() || rest.MinOrder.IsNegative() {
		return nil, fmt.Errorf("delivery fee and minimum order must be non-negative: %w", domain.ErrValidation)
	}

	owner, err := s.users.GetUserByID(ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rest.OwnerID = owner.ID
	rest.CreatedAt = now
	rest.UpdatedAt = now

	if err := s.restaurants.InsertRestaurant(rest); err != nil {
		return nil, err
	}
	return rest, nil
}

// Update applies a partial update field by field; nil patch fields are left
// untouched.
func (s *RestaurantService) Update(id int64, patch RestaurantPatch) (*domain.Restaurant, error) {
	rest, err := s.restaurants.GetRestaurant(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		rest.Name = *patch.Name
	}
	if patch.Image != nil {
		rest.Image = *patch.Image
	}
	if patch.Cuisine != nil {
		rest.Cuisine = *patch.Cuisine
	}
	if patch.Rating != nil {
		rest.Rating = *patch.Rating
	}
	if patch.ReviewCount != nil {
		rest.ReviewCount = *patch.ReviewCount
	}
	if patch.DeliveryTime != nil {
		rest.DeliveryTime = *patch.DeliveryTime
	}
	if patch.DeliveryFee != nil {
		if patch.DeliveryFee.IsNegative() {
			return nil, fmt.Errorf("delivery fee must be non-negative: %w", domain.ErrValidation)
		}
		rest.DeliveryFee = *patch.DeliveryFee
	}
	if patch.MinOrder != nil {
		if patch.MinOrder.IsNegative() {
			return nil, fmt.Errorf("minimum order must be non-negative: %w", domain.ErrValidation)
		}
		rest.MinOrder = *patch.MinOrder
	}
	if patch.IsOpen != nil {
		rest.IsOpen = *patch.IsOpen
	}
	if patch.Address != nil {
		rest.Address = *patch.Address
	}
	rest.UpdatedAt = time.Now().UTC()

	if err := s.restaurants.UpdateRestaurant(rest); err != nil {
		return nil, err
	}
	return rest, nil
}

// Delete removes the restaurant; menu items and orders cascade at the store.
func (s *RestaurantService) Delete(id int64) error {
	rows, err := s.restaurants.DeleteRestaurant(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("restaurant not found with id: %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
