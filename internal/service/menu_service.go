package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"foodiego/internal/domain"
)

// MenuService manages a restaurant's menu. The cache is optional; when set,
// menu listings are served from redis and every write invalidates the
// restaurant's entry.
type MenuService struct {
	menuItems   MenuItemRepository
	restaurants RestaurantRepository
	cache       MenuCache
}

func NewMenuService(menuItems MenuItemRepository, restaurants RestaurantRepository, cache MenuCache) *MenuService {
	return &MenuService{menuItems: menuItems, restaurants: restaurants, cache: cache}
}

func (s *MenuService) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.MenuItem, error) {
	if s.cache != nil {
		if items, ok := s.cache.Get(ctx, restaurantID); ok {
			return items, nil
		}
	}

	items, err := s.menuItems.ListMenuItems(restaurantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, restaurantID, items); err != nil {
			log.Printf("[foodiego] WARNING: failed to cache menu for restaurant %d: %v", restaurantID, err)
		}
	}
	return items, nil
}

func (s *MenuService) Get(id int64) (*domain.MenuItem, error) {
	return s.menuItems.GetMenuItem(id)
}

func (s *MenuService) Create(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Category) == "" {
		return nil, fmt.Errorf("menu item name and category are required: %w", domain.ErrValidation)
	}
	if item.Price.IsNegative() {
		return nil, fmt.Errorf("menu item price must be non-negative: %w", domain.ErrValidation)
	}

	if _, err := s.restaurants.GetRestaurant(item.RestaurantID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.menuItems.InsertMenuItem(item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.RestaurantID)
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id int64, patch MenuItemPatch) (*domain.MenuItem, error) {
	item, err := s.menuItems.GetMenuItem(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("menu item price must be non-negative: %w", domain.ErrValidation)
		}
		item.Price = *patch.Price
	}
	if patch.Image != nil {
		item.Image = *patch.Image
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.IsPopular != nil {
		item.IsPopular = *patch.IsPopular
	}
	if patch.IsVegetarian != nil {
		item.IsVegetarian = *patch.IsVegetarian
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.menuItems.UpdateMenuItem(item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.RestaurantID)
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id int64) error {
	item, err := s.menuItems.GetMenuItem(id)
	if err != nil {
		return err
	}

	rows, err := s.menuItems.DeleteMenuItem(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("menu item not found with id: %d: %w", id, domain.ErrNotFound)
	}
	s.invalidate(ctx, item.RestaurantID)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context, restaurantID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID); err != nil {
		log.Printf("[foodiego] WARNING: failed to invalidate menu cache for restaurant %d: %v", restaurantID, err)
	}
}
