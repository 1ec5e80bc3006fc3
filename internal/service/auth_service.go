package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"foodiego/internal/domain"
)

// AuthResponse is what register and login hand back to the frontend: a signed
// token plus the profile it belongs to and the restaurant the user owns, if
// any.
type AuthResponse struct {
	Token        string `json:"token"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	RestaurantID *int64 `json:"restaurantId"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

type AuthService struct {
	users       UserRepository
	restaurants RestaurantRepository
	secret      []byte
	tokenTTL    time.Duration
}

func NewAuthService(users UserRepository, restaurants RestaurantRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		restaurants: restaurants,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
	}
}

func (s *AuthService) Register(in RegisterInput) (*AuthResponse, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("username and password are required: %w", domain.ErrValidation)
	}

	taken, err := s.users.UsernameExists(in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username is already taken: %w", domain.ErrConflict)
	}

	taken, err = s.users.EmailExists(in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email is already in use: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         "ADMIN",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.InsertUser(user); err != nil {
		return nil, err
	}

	return s.buildResponse(user)
}

func (s *AuthService) Login(username, password string) (*AuthResponse, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid username or password: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid username or password: %w", domain.ErrUnauthorized)
	}

	return s.buildResponse(user)
}

// VerifyToken parses a bearer token and returns the user id it was issued to.
func (s *AuthService) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	claims := token.Claims.(*jwt.RegisteredClaims)
	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", domain.ErrUnauthorized)
	}
	return userID, nil
}

func (s *AuthService) buildResponse(user *domain.User) (*AuthResponse, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	resp := &AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}

	if rest, err := s.restaurants.GetRestaurantByOwner(user.ID); err == nil {
		resp.RestaurantID = &rest.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return resp, nil
}
