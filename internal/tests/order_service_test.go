package tests

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodiego/internal/domain"
	"foodiego/internal/mocks"
	"foodiego/internal/service"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRestaurant() *domain.Restaurant {
	return &domain.Restaurant{
		ID:          1,
		Name:        "Testaurant",
		DeliveryFee: money("2.50"),
	}
}

func validInput() service.CreateOrderInput {
	return service.CreateOrderInput{
		RestaurantID:    1,
		CustomerName:    "Alice",
		CustomerPhone:   "+7700123456",
		CustomerAddress: "12 Main St",
		Items: []service.OrderItemInput{
			{MenuItemID: 10, Quantity: 2},
			{MenuItemID: 11, Quantity: 1},
		},
	}
}

func TestOrderService_CreateTotal(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", int64(10)).
		Return(&domain.MenuItem{ID: 10, RestaurantID: 1, Name: "Plov", Price: money("10.00"), Category: "Mains"}, nil).Once()
	mockMenu.On("GetMenuItem", int64(11)).
		Return(&domain.MenuItem{ID: 11, RestaurantID: 1, Name: "Ayran", Price: money("5.50"), Category: "Drinks"}, nil).Once()
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).Return(nil).Once()

	order, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.True(t, order.Total.Equal(money("28.00")), "got total %s", order.Total)
	assert.Equal(t, "28.00", order.Total.StringFixed(2))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Plov", order.Lines[0].Name)
	assert.True(t, order.Lines[0].Price.Equal(money("10.00")))
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.True(t, order.Lines[0].LineTotal().Equal(money("20.00")))
	assert.True(t, order.Lines[1].LineTotal().Equal(money("5.50")))
	mockOrders.AssertExpectations(t)
}

func TestOrderService_CreateSnapshotsCatalogPrices(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	menuItem := &domain.MenuItem{ID: 10, RestaurantID: 1, Name: "Plov", Price: money("10.00"), Category: "Mains"}
	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", int64(10)).Return(menuItem, nil).Once()
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).Return(nil).Once()

	in := validInput()
	in.Items = []service.OrderItemInput{{MenuItemID: 10, Quantity: 1}}
	order, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	// A later catalog edit must not leak into the stored line.
	menuItem.Price = money("99.99")
	menuItem.Name = "Renamed"

	assert.True(t, order.Lines[0].Price.Equal(money("10.00")))
	assert.Equal(t, "Plov", order.Lines[0].Name)
	assert.True(t, order.Total.Equal(money("12.50")))
}

func TestOrderService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*service.CreateOrderInput)
	}{
		{
			name:  "no items",
			mutate: func(in *service.CreateOrderInput) { in.Items = nil },
		},
		{
			name:  "zero quantity",
			mutate: func(in *service.CreateOrderInput) { in.Items[0].Quantity = 0 },
		},
		{
			name:  "negative quantity",
			mutate: func(in *service.CreateOrderInput) { in.Items[1].Quantity = -3 },
		},
		{
			name:  "blank customer name",
			mutate: func(in *service.CreateOrderInput) { in.CustomerName = "   " },
		},
		{
			name:  "blank phone",
			mutate: func(in *service.CreateOrderInput) { in.CustomerPhone = "" },
		},
		{
			name:  "blank address",
			mutate: func(in *service.CreateOrderInput) { in.CustomerAddress = "" },
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockOrders := new(mocks.OrderRepository)
			mockRestaurants := new(mocks.RestaurantRepository)
			mockMenu := new(mocks.MenuItemRepository)
			svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

			in := validInput()
			testCase.mutate(&in)

			order, err := svc.Create(context.Background(), in)

			assert.Nil(t, order)
			assert.ErrorIs(t, err, domain.ErrValidation)
			mockOrders.AssertNotCalled(t, "InsertOrder", mock.Anything)
			mockRestaurants.AssertNotCalled(t, "GetRestaurant", mock.Anything)
		})
	}
}

func TestOrderService_CreateMissingMenuItem(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", int64(10)).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil).Once()
	mockMenu.On("GetMenuItem", int64(11)).Return(nil, domain.ErrNotFound).Once()

	order, err := svc.Create(context.Background(), validInput())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockOrders.AssertNotCalled(t, "InsertOrder", mock.Anything)
}

func TestOrderService_CreateMissingRestaurant(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(nil, domain.ErrNotFound).Once()

	order, err := svc.Create(context.Background(), validInput())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockOrders.AssertNotCalled(t, "InsertOrder", mock.Anything)
}

func TestOrderService_CreateRetriesOnNumberCollision(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", mock.Anything).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil)

	var attempts []string
	recordNumber := func(args mock.Arguments) {
		attempts = append(attempts, args.Get(0).(*domain.Order).OrderNumber)
	}
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).
		Run(recordNumber).Return(domain.ErrConflict).Once()
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).
		Run(recordNumber).Return(nil).Once()

	order, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.NotEqual(t, attempts[0], attempts[1])
	assert.Equal(t, attempts[1], order.OrderNumber)
	mockOrders.AssertExpectations(t)
}

func TestOrderService_CreateGivesUpAfterRepeatedCollision(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", mock.Anything).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil)
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).
		Return(domain.ErrConflict).Twice()

	order, err := svc.Create(context.Background(), validInput())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrConflict)
	mockOrders.AssertExpectations(t)
}

func TestOrderService_CreateQRAndEventsAreBestEffort(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	mockQR := new(mocks.QRGenerator)
	mockPublisher := new(mocks.EventPublisher)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, mockPublisher, mockQR)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", mock.Anything).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil)
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).Return(nil).Once()
	mockQR.On("Generate", mock.AnythingOfType("string")).Return(nil, errors.New("encode failed")).Once()
	mockPublisher.On("PublishOrderEvent", mock.Anything, mock.AnythingOfType("storage.OrderEvent")).
		Return(errors.New("broker down")).Once()

	order, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotNil(t, order)
	mockQR.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestOrderService_CreateStoresQRCode(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	mockQR := new(mocks.QRGenerator)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, mockQR)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil).Once()
	mockMenu.On("GetMenuItem", mock.Anything).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil)
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) { args.Get(0).(*domain.Order).ID = 42 }).
		Return(nil).Once()
	mockQR.On("Generate", mock.AnythingOfType("string")).Return([]byte("qr-png"), nil).Once()
	mockOrders.On("SaveQRCode", int64(42), []byte("qr-png")).Return(nil).Once()

	_, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	mockOrders.AssertExpectations(t)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.OrderStatus
		wantErr error
	}{
		{name: "pending to preparing", status: domain.StatusPreparing},
		{name: "pending to cancelled", status: domain.StatusCancelled},
		{name: "back to pending", status: domain.StatusPending},
		{name: "unknown status", status: domain.OrderStatus("SHIPPED"), wantErr: domain.ErrValidation},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockOrders := new(mocks.OrderRepository)
			svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

			stored := &domain.Order{
				ID:          7,
				OrderNumber: "ORD-1A2B3C4D",
				Status:      domain.StatusPending,
				Total:       money("28.00"),
				Lines:       []domain.OrderLine{{MenuItemID: 10, Quantity: 2, Price: money("10.00")}},
			}
			if testCase.wantErr == nil {
				mockOrders.On("GetOrder", int64(7)).Return(stored, nil).Once()
				mockOrders.On("UpdateOrder", mock.AnythingOfType("*domain.Order")).Return(nil).Once()
			}

			order, err := svc.UpdateStatus(context.Background(), 7, testCase.status)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				mockOrders.AssertNotCalled(t, "UpdateOrder", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.status, order.Status)
			assert.True(t, order.Total.Equal(money("28.00")))
			assert.Len(t, order.Lines, 1)
			mockOrders.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatusNotFound(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

	mockOrders.On("GetOrder", int64(99)).Return(nil, domain.ErrNotFound).Once()

	order, err := svc.UpdateStatus(context.Background(), 99, domain.StatusConfirmed)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_Delete(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

	mockOrders.On("GetOrder", int64(7)).
		Return(&domain.Order{ID: 7, OrderNumber: "ORD-1A2B3C4D"}, nil).Once()
	mockOrders.On("DeleteOrder", int64(7)).Return(int64(1), nil).Once()

	err := svc.Delete(context.Background(), 7)

	assert.NoError(t, err)
	mockOrders.AssertExpectations(t)
}

func TestOrderService_DeleteNotFound(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

	mockOrders.On("GetOrder", int64(99)).Return(nil, domain.ErrNotFound).Once()

	err := svc.Delete(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockOrders.AssertNotCalled(t, "DeleteOrder", mock.Anything)
}

func TestOrderService_GetByNumberNotFound(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

	mockOrders.On("GetOrderByNumber", "ORD-ABCDEF12").Return(nil, domain.ErrNotFound).Once()

	order, err := svc.GetByNumber("ORD-ABCDEF12")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_ListByStatusRejectsUnknown(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, nil)

	orders, err := svc.ListByStatus(domain.OrderStatus("shipped"))

	assert.Nil(t, orders)
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockOrders.AssertNotCalled(t, "ListOrdersByStatus", mock.Anything)
}

func TestOrderService_GetQRCodeRegenerates(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockQR := new(mocks.QRGenerator)
	svc := service.NewOrderService(mockOrders, nil, nil, nil, mockQR)

	mockOrders.On("GetQRCode", int64(7)).Return([]byte{}, nil).Once()
	mockOrders.On("GetOrder", int64(7)).
		Return(&domain.Order{ID: 7, OrderNumber: "ORD-1A2B3C4D"}, nil).Once()
	mockQR.On("Generate", "ORD-1A2B3C4D").Return([]byte("qr-png"), nil).Once()
	mockOrders.On("SaveQRCode", int64(7), []byte("qr-png")).Return(nil).Once()

	qr, err := svc.GetQRCode(7)

	require.NoError(t, err)
	assert.Equal(t, []byte("qr-png"), qr)
	mockOrders.AssertExpectations(t)
}

func TestDefaultQRGenerator(t *testing.T) {
	gen := service.DefaultQRGenerator{BaseURL: "http://localhost:3000"}
	qr, err := gen.Generate("ORD-1A2B3C4D")

	assert.NoError(t, err)
	assert.NotEmpty(t, qr)
}

func TestNewOrderNumbersAreDistinct(t *testing.T) {
	mockOrders := new(mocks.OrderRepository)
	mockRestaurants := new(mocks.RestaurantRepository)
	mockMenu := new(mocks.MenuItemRepository)
	svc := service.NewOrderService(mockOrders, mockRestaurants, mockMenu, nil, nil)

	mockRestaurants.On("GetRestaurant", int64(1)).Return(testRestaurant(), nil)
	mockMenu.On("GetMenuItem", mock.Anything).
		Return(&domain.MenuItem{ID: 10, Price: money("10.00")}, nil)
	mockOrders.On("InsertOrder", mock.AnythingOfType("*domain.Order")).Return(nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		order, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
		assert.Regexp(t, orderNumberPattern, order.OrderNumber)
		assert.False(t, seen[order.OrderNumber], "duplicate order number %s", order.OrderNumber)
		seen[order.OrderNumber] = true
	}
}
