package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"foodiego/internal/domain"
	"foodiego/internal/service"
	"foodiego/internal/storage"
)

const maxUploadSize = 10 << 20 // 10MB, same cap the frontend advertises

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type Handler struct {
	Auth        *service.AuthService
	Restaurants *service.RestaurantService
	Menu        *service.MenuService
	Orders      *service.OrderService
	Files       *storage.FileStore

	validate *validator.Validate
}

func NewHandler(auth *service.AuthService, restaurants *service.RestaurantService, menu *service.MenuService, orders *service.OrderService, files *storage.FileStore) *Handler {
	return &Handler{
		Auth:        auth,
		Restaurants: restaurants,
		Menu:        menu,
		Orders:      orders,
		Files:       files,
		validate:    validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/auth/register", h.register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.login).Methods("POST")

	r.HandleFunc("/api/restaurants", h.listRestaurants).Methods("GET")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/owner/{ownerId:[0-9]+}", h.getRestaurantByOwner).Methods("GET")
	r.HandleFunc("/api/restaurants", h.requireAuth(h.createRestaurant)).Methods("POST")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}", h.requireAuth(h.updateRestaurant)).Methods("PUT")
	r.HandleFunc("/api/restaurants/{id:[0-9]+}", h.requireAuth(h.deleteRestaurant)).Methods("DELETE")

	r.HandleFunc("/api/menu-items/restaurant/{restaurantId:[0-9]+}", h.listMenuItems).Methods("GET")
	r.HandleFunc("/api/menu-items/{id:[0-9]+}", h.getMenuItem).Methods("GET")
	r.HandleFunc("/api/menu-items", h.requireAuth(h.createMenuItem)).Methods("POST")
	r.HandleFunc("/api/menu-items/{id:[0-9]+}", h.requireAuth(h.updateMenuItem)).Methods("PUT")
	r.HandleFunc("/api/menu-items/{id:[0-9]+}", h.requireAuth(h.deleteMenuItem)).Methods("DELETE")

	r.HandleFunc("/api/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/orders/restaurant/{restaurantId:[0-9]+}", h.listOrdersByRestaurant).Methods("GET")
	r.HandleFunc("/api/orders/status/{status}", h.listOrdersByStatus).Methods("GET")
	r.HandleFunc("/api/orders/{id:[0-9]+}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/number/{orderNumber}", h.getOrderByNumber).Methods("GET")
	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders/{id:[0-9]+}/status", h.updateOrderStatus).Methods("PATCH")
	r.HandleFunc("/api/orders/{id:[0-9]+}", h.deleteOrder).Methods("DELETE")
	r.HandleFunc("/api/orders/{id:[0-9]+}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/upload/restaurant", h.requireAuth(h.uploadImage(storage.CategoryRestaurants))).Methods("POST")
	r.HandleFunc("/api/upload/menu-item", h.requireAuth(h.uploadImage(storage.CategoryMenuItems))).Methods("POST")
	r.HandleFunc("/api/upload", h.requireAuth(h.deleteFile)).Methods("DELETE")
}

type errorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses, keeping the message
// (which names the offending identifier) intact.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	respondJSON(w, status, errorResponse{
		Status:    status,
		Message:   err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, fmt.Errorf("invalid JSON payload: %w", domain.ErrValidation))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, fmt.Errorf("%v: %w", err, domain.ErrValidation))
		return false
	}
	return true
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeError(w, fmt.Errorf("missing bearer token: %w", domain.ErrUnauthorized))
			return
		}
		if _, err := h.Auth.VerifyToken(header[len(prefix):]); err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "foodiego",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ---- auth ----

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := h.Auth.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ---- restaurants ----

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.List()
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, restaurants)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Restaurants.Get(pathID(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rest)
}

func (h *Handler) getRestaurantByOwner(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Restaurants.GetByOwner(pathID(r, "ownerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rest)
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(r.URL.Query().Get("ownerId"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("ownerId query parameter is required: %w", domain.ErrValidation))
		return
	}

	var req createRestaurantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	rest, err := h.Restaurants.Create(req.toDomain(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rest)
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req updateRestaurantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	rest, err := h.Restaurants.Update(pathID(r, "id"), req.toPatch())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rest)
}

func (h *Handler) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	if err := h.Restaurants.Delete(pathID(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- menu items ----

func (h *Handler) listMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.ListByRestaurant(r.Context(), pathID(r, "restaurantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Menu.Get(pathID(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.Menu.Create(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req updateMenuItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	item, err := h.Menu.Update(r.Context(), pathID(r, "id"), req.toPatch())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Menu.Delete(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- orders ----

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List()
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) listOrdersByRestaurant(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListByRestaurant(pathID(r, "restaurantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) listOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListByStatus(domain.OrderStatus(mux.Vars(r)["status"]))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(pathID(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetByNumber(mux.Vars(r)["orderNumber"])
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := h.Orders.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(r.Context(), pathID(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Delete(r.Context(), pathID(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Orders.GetQRCode(pathID(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(qr) == 0 {
		writeError(w, fmt.Errorf("QR code not available: %w", domain.ErrNotFound))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

// ---- uploads ----

func (h *Handler) uploadImage(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, fmt.Errorf("file too large: %w", domain.ErrValidation))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, fmt.Errorf("error retrieving the file: %w", domain.ErrValidation))
			return
		}
		defer file.Close()

		if !allowedImageTypes[header.Header.Get("Content-Type")] {
			writeError(w, fmt.Errorf("invalid file type, only JPEG, PNG, GIF, WebP allowed: %w", domain.ErrValidation))
			return
		}

		url, err := h.Files.Store(category, header.Filename, file)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("url")
	if fileURL == "" {
		writeError(w, fmt.Errorf("url query parameter is required: %w", domain.ErrValidation))
		return
	}
	if err := h.Files.Delete(fileURL); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}
