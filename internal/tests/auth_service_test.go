package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"foodiego/internal/domain"
	"foodiego/internal/mocks"
	"foodiego/internal/service"
)

const testSecret = "test-secret"

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register(t *testing.T) {
	mockUsers := new(mocks.UserRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	svc := service.NewAuthService(mockUsers, mockRestaurants, testSecret, time.Hour)

	mockUsers.On("UsernameExists", "alice").Return(false, nil).Once()
	mockUsers.On("EmailExists", "alice@example.com").Return(false, nil).Once()
	mockUsers.On("InsertUser", mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { args.Get(0).(*domain.User).ID = 5 }).
		Return(nil).Once()
	mockRestaurants.On("GetRestaurantByOwner", int64(5)).Return(nil, domain.ErrNotFound).Once()

	resp, err := svc.Register(service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		FullName: "Alice A",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(5), resp.UserID)
	assert.Equal(t, "ADMIN", resp.Role)
	assert.Nil(t, resp.RestaurantID)

	userID, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), userID)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mocks.UserRepository)
	}{
		{
			name: "username taken",
			setupMock: func(m *mocks.UserRepository) {
				m.On("UsernameExists", "alice").Return(true, nil).Once()
			},
		},
		{
			name: "email in use",
			setupMock: func(m *mocks.UserRepository) {
				m.On("UsernameExists", "alice").Return(false, nil).Once()
				m.On("EmailExists", "alice@example.com").Return(true, nil).Once()
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockUsers := new(mocks.UserRepository)
			svc := service.NewAuthService(mockUsers, nil, testSecret, time.Hour)

			testCase.setupMock(mockUsers)

			resp, err := svc.Register(service.RegisterInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "secret123",
			})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrConflict)
			mockUsers.AssertNotCalled(t, "InsertUser", mock.Anything)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	mockUsers := new(mocks.UserRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	svc := service.NewAuthService(mockUsers, mockRestaurants, testSecret, time.Hour)

	user := &domain.User{
		ID:           5,
		Username:     "alice",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         "ADMIN",
	}
	mockUsers.On("GetUserByUsername", "alice").Return(user, nil).Once()
	mockRestaurants.On("GetRestaurantByOwner", int64(5)).
		Return(&domain.Restaurant{ID: 3, OwnerID: 5}, nil).Once()

	resp, err := svc.Login("alice", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.RestaurantID)
	assert.Equal(t, int64(3), *resp.RestaurantID)
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mocks.UserRepository)
		password  string
	}{
		{
			name: "unknown username",
			setupMock: func(m *mocks.UserRepository) {
				m.On("GetUserByUsername", "alice").Return(nil, domain.ErrNotFound).Once()
			},
			password: "secret123",
		},
		{
			name: "wrong password",
			setupMock: func(m *mocks.UserRepository) {
				m.On("GetUserByUsername", "alice").
					Return(&domain.User{ID: 5, PasswordHash: hashPassword(t, "secret123")}, nil).Once()
			},
			password: "wrong",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockUsers := new(mocks.UserRepository)
			svc := service.NewAuthService(mockUsers, nil, testSecret, time.Hour)

			testCase.setupMock(mockUsers)

			resp, err := svc.Login("alice", testCase.password)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Contains(t, err.Error(), "invalid username or password")
		})
	}
}

func TestAuthService_VerifyTokenRejectsGarbage(t *testing.T) {
	svc := service.NewAuthService(nil, nil, testSecret, time.Hour)

	_, err := svc.VerifyToken("not-a-token")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_VerifyTokenRejectsWrongSecret(t *testing.T) {
	mockUsers := new(mocks.UserRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	issuer := service.NewAuthService(mockUsers, mockRestaurants, "other-secret", time.Hour)
	verifier := service.NewAuthService(nil, nil, testSecret, time.Hour)

	user := &domain.User{ID: 5, Username: "alice", PasswordHash: hashPassword(t, "secret123")}
	mockUsers.On("GetUserByUsername", "alice").Return(user, nil).Once()
	mockRestaurants.On("GetRestaurantByOwner", int64(5)).Return(nil, domain.ErrNotFound).Once()

	resp, err := issuer.Login("alice", "secret123")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(resp.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
