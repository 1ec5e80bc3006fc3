package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"foodiego/internal/domain"
)

// PostgresRepository implements the catalog, identity and order stores on a
// shared *sql.DB.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ---- users ----

func (r *PostgresRepository) InsertUser(u *domain.User) error {
	err := r.DB.QueryRow(`
		INSERT INTO users (username, email, password_hash, full_name, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or email already in use: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(`
		SELECT id, username, email, password_hash, full_name, COALESCE(phone, ''), role, created_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found with id: %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) GetUserByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.QueryRow(`
		SELECT id, username, email, password_hash, full_name, COALESCE(phone, ''), role, created_at
		FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found with username: %s: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) UsernameExists(username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) EmailExists(email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

// ---- restaurants ----

const restaurantColumns = `id, COALESCE(owner_id, 0), name, COALESCE(image, ''), cuisine, rating,
	review_count, COALESCE(delivery_time, ''), delivery_fee, min_order, is_open, address,
	created_at, updated_at`

func (r *PostgresRepository) scanRestaurant(row interface{ Scan(...any) error }) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := row.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Image, &rest.Cuisine, &rest.Rating,
		&rest.ReviewCount, &rest.DeliveryTime, &rest.DeliveryFee, &rest.MinOrder, &rest.IsOpen,
		&rest.Address, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *PostgresRepository) InsertRestaurant(rest *domain.Restaurant) error {
	err := r.DB.QueryRow(`
		INSERT INTO restaurants (owner_id, name, image, cuisine, rating, review_count,
			delivery_time, delivery_fee, min_order, is_open, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		rest.OwnerID, rest.Name, rest.Image, rest.Cuisine, rest.Rating, rest.ReviewCount,
		rest.DeliveryTime, rest.DeliveryFee, rest.MinOrder, rest.IsOpen, rest.Address,
		rest.CreatedAt, rest.UpdatedAt,
	).Scan(&rest.ID)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRestaurants() ([]domain.Restaurant, error) {
	rows, err := r.DB.Query(`SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		rest, err := r.scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

func (r *PostgresRepository) GetRestaurant(id int64) (*domain.Restaurant, error) {
	rest, err := r.scanRestaurant(r.DB.QueryRow(`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("restaurant not found with id: %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rest, nil
}

func (r *PostgresRepository) GetRestaurantByOwner(ownerID int64) (*domain.Restaurant, error) {
	rest, err := r.scanRestaurant(r.DB.QueryRow(`SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = $1`, ownerID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("restaurant not found for owner id: %d: %w", ownerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rest, nil
}

func (r *PostgresRepository) UpdateRestaurant(rest *domain.Restaurant) error {
	_, err := r.DB.Exec(`
		UPDATE restaurants
		SET name=$1, image=$2, cuisine=$3, rating=$4, review_count=$5, delivery_time=$6,
			delivery_fee=$7, min_order=$8, is_open=$9, address=$10, updated_at=$11
		WHERE id=$12`,
		rest.Name, rest.Image, rest.Cuisine, rest.Rating, rest.ReviewCount, rest.DeliveryTime,
		rest.DeliveryFee, rest.MinOrder, rest.IsOpen, rest.Address, rest.UpdatedAt, rest.ID)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteRestaurant(id int64) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM restaurants WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ---- menu items ----

const menuItemColumns = `id, restaurant_id, name, COALESCE(description, ''), price,
	COALESCE(image, ''), category, is_popular, is_vegetarian, available, created_at, updated_at`

func (r *PostgresRepository) scanMenuItem(row interface{ Scan(...any) error }) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
		&item.Image, &item.Category, &item.IsPopular, &item.IsVegetarian, &item.Available,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) InsertMenuItem(item *domain.MenuItem) error {
	err := r.DB.QueryRow(`
		INSERT INTO menu_items (restaurant_id, name, description, price, image, category,
			is_popular, is_vegetarian, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		item.RestaurantID, item.Name, item.Description, item.Price, item.Image, item.Category,
		item.IsPopular, item.IsVegetarian, item.Available, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListMenuItems(restaurantID int64) ([]domain.MenuItem, error) {
	rows, err := r.DB.Query(`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = $1 ORDER BY id`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := r.scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetMenuItem(id int64) (*domain.MenuItem, error) {
	item, err := r.scanMenuItem(r.DB.QueryRow(`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("menu item not found with id: %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) UpdateMenuItem(item *domain.MenuItem) error {
	_, err := r.DB.Exec(`
		UPDATE menu_items
		SET name=$1, description=$2, price=$3, image=$4, category=$5, is_popular=$6,
			is_vegetarian=$7, available=$8, updated_at=$9
		WHERE id=$10`,
		item.Name, item.Description, item.Price, item.Image, item.Category, item.IsPopular,
		item.IsVegetarian, item.Available, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteMenuItem(id int64) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ---- orders ----

const orderColumns = `o.id, o.order_number, o.restaurant_id, COALESCE(r.name, ''), o.total,
	o.status, o.customer_name, o.customer_phone, o.customer_address, COALESCE(o.notes, ''),
	o.created_at, o.updated_at`

func (r *PostgresRepository) scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.RestaurantID, &o.RestaurantName, &o.Total,
		&o.Status, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOrder persists the order and its lines as one transaction. A unique
// violation on order_number is reported as domain.ErrConflict so the caller
// can regenerate the number and retry.
func (r *PostgresRepository) InsertOrder(o *domain.Order) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO orders (order_number, restaurant_id, total, status, customer_name,
			customer_phone, customer_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		o.OrderNumber, o.RestaurantID, o.Total, o.Status, o.CustomerName,
		o.CustomerPhone, o.CustomerAddress, o.Notes, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number %s already exists: %w", o.OrderNumber, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range o.Lines {
		err = tx.QueryRow(`
			INSERT INTO order_lines (order_id, menu_item_id, name, description, price, image, category, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			o.ID, o.Lines[i].MenuItemID, o.Lines[i].Name, o.Lines[i].Description,
			o.Lines[i].Price, o.Lines[i].Image, o.Lines[i].Category, o.Lines[i].Quantity,
		).Scan(&o.Lines[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
		o.Lines[i].OrderID = o.ID
	}

	return tx.Commit()
}

func (r *PostgresRepository) loadLines(o *domain.Order) error {
	rows, err := r.DB.Query(`
		SELECT id, order_id, COALESCE(menu_item_id, 0), name, COALESCE(description, ''),
			price, COALESCE(image, ''), COALESCE(category, ''), quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	o.Lines = []domain.OrderLine{}
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Name,
			&line.Description, &line.Price, &line.Image, &line.Category, &line.Quantity); err != nil {
			return err
		}
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

func (r *PostgresRepository) GetOrder(id int64) (*domain.Order, error) {
	o, err := r.scanOrder(r.DB.QueryRow(`
		SELECT `+orderColumns+`
		FROM orders o LEFT JOIN restaurants r ON o.restaurant_id = r.id
		WHERE o.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found with id: %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) GetOrderByNumber(orderNumber string) (*domain.Order, error) {
	o, err := r.scanOrder(r.DB.QueryRow(`
		SELECT `+orderColumns+`
		FROM orders o LEFT JOIN restaurants r ON o.restaurant_id = r.id
		WHERE o.order_number = $1`, orderNumber))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found with order number: %s: %w", orderNumber, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) listOrders(query string, args ...any) ([]domain.Order, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadLines(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) ListOrders() ([]domain.Order, error) {
	return r.listOrders(`
		SELECT ` + orderColumns + `
		FROM orders o LEFT JOIN restaurants r ON o.restaurant_id = r.id
		ORDER BY o.id`)
}

func (r *PostgresRepository) ListOrdersByRestaurant(restaurantID int64) ([]domain.Order, error) {
	return r.listOrders(`
		SELECT `+orderColumns+`
		FROM orders o LEFT JOIN restaurants r ON o.restaurant_id = r.id
		WHERE o.restaurant_id = $1
		ORDER BY o.created_at DESC`, restaurantID)
}

func (r *PostgresRepository) ListOrdersByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	return r.listOrders(`
		SELECT `+orderColumns+`
		FROM orders o LEFT JOIN restaurants r ON o.restaurant_id = r.id
		WHERE o.status = $1
		ORDER BY o.created_at DESC`, status)
}

// UpdateOrder persists status and updated_at only; total and lines are frozen
// at creation time.
func (r *PostgresRepository) UpdateOrder(o *domain.Order) error {
	_, err := r.DB.Exec(`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		o.Status, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// DeleteOrder removes the order; its lines go with it via ON DELETE CASCADE.
func (r *PostgresRepository) DeleteOrder(id int64) (int64, error) {
	result, err := r.DB.Exec("DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) SaveQRCode(orderID int64, qr []byte) error {
	_, err := r.DB.Exec("UPDATE orders SET qr_code = $1 WHERE id = $2", qr, orderID)
	return err
}

func (r *PostgresRepository) GetQRCode(orderID int64) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRow("SELECT qr_code FROM orders WHERE id = $1", orderID).Scan(&qr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found with id: %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return qr, nil
}
