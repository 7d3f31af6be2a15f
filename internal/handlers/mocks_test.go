package handlers

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
	"github.com/ukydev/mobile-garage/internal/notify"
)

// MockCustomerCollection is a mock implementation of db.CustomerCollection
type MockCustomerCollection struct {
	mock.Mock
}

func (m *MockCustomerCollection) InsertCustomer(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerCollection) FindCustomers(ctx context.Context) ([]models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) FindCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerCollection) DeleteCustomer(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerCollection) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindMatchingVehicle(ctx context.Context, customerID int64, make, model string, year int) (*models.Vehicle, error) {
	args := m.Called(ctx, customerID, make, model, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehiclesByCustomer(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockVehicleCollection) CountVehicles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByProfile(ctx context.Context, profile models.Profile) (*models.User, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteUserByProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAdminCollection is a mock implementation of db.AdminCollection
type MockAdminCollection struct {
	mock.Mock
}

func (m *MockAdminCollection) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminCollection) FindAdmins(ctx context.Context) ([]models.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Admin), args.Error(1)
}

func (m *MockAdminCollection) FindAdminByID(ctx context.Context, id int64) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminCollection) UpdateAdmin(ctx context.Context, admin models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminCollection) DeleteAdmin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMechanicCollection is a mock implementation of db.MechanicCollection
type MockMechanicCollection struct {
	mock.Mock
}

func (m *MockMechanicCollection) InsertMechanic(ctx context.Context, mechanic *models.Mechanic) error {
	args := m.Called(ctx, mechanic)
	return args.Error(0)
}

func (m *MockMechanicCollection) FindMechanics(ctx context.Context) ([]models.Mechanic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Mechanic), args.Error(1)
}

func (m *MockMechanicCollection) FindMechanicByID(ctx context.Context, id int64) (*models.Mechanic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mechanic), args.Error(1)
}

func (m *MockMechanicCollection) UpdateMechanic(ctx context.Context, mechanic models.Mechanic) error {
	args := m.Called(ctx, mechanic)
	return args.Error(0)
}

func (m *MockMechanicCollection) DeleteMechanic(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMechanicCollection) CountMechanics(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockServiceRequestCollection is a mock implementation of db.ServiceRequestCollection
type MockServiceRequestCollection struct {
	mock.Mock
}

func (m *MockServiceRequestCollection) InsertServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockServiceRequestCollection) FindServiceRequests(ctx context.Context, filter db.ServiceRequestFilter) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestCollection) FindServiceRequestByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestCollection) UpdateServiceRequest(ctx context.Context, req models.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockServiceRequestCollection) DeleteServiceRequest(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServiceRequestCollection) UnassignMechanic(ctx context.Context, mechanicID int64) error {
	args := m.Called(ctx, mechanicID)
	return args.Error(0)
}

func (m *MockServiceRequestCollection) CountServiceRequests(ctx context.Context, filter db.ServiceRequestFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceRequestCollection) CountServiceRequestsByStatus(ctx context.Context, filter db.ServiceRequestFilter) (map[string]int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockInventoryCollection is a mock implementation of db.InventoryCollection
type MockInventoryCollection struct {
	mock.Mock
}

func (m *MockInventoryCollection) InsertInventory(ctx context.Context, item *models.Inventory) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryCollection) FindInventories(ctx context.Context) ([]models.Inventory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inventory), args.Error(1)
}

func (m *MockInventoryCollection) FindInventoryByID(ctx context.Context, id int64) (*models.Inventory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryCollection) UpdateInventory(ctx context.Context, item models.Inventory) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryCollection) DeleteInventory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInventoryCollection) AdjustQuantity(ctx context.Context, id int64, delta int) (*models.Inventory, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryCollection) CountInventories(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryCollection) CountLowStock(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerCollection is a mock implementation of db.LedgerCollection
type MockLedgerCollection struct {
	mock.Mock
}

func (m *MockLedgerCollection) AddUsage(ctx context.Context, serviceRequestID, inventoryID int64, quantity int) (row *models.ServiceRequestInventory, created bool, err error) {
	args := m.Called(ctx, serviceRequestID, inventoryID, quantity)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.ServiceRequestInventory), args.Bool(1), args.Error(2)
}

func (m *MockLedgerCollection) FindUsages(ctx context.Context) ([]models.ServiceRequestInventory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRequestInventory), args.Error(1)
}

func (m *MockLedgerCollection) FindUsageByID(ctx context.Context, id int64) (*models.ServiceRequestInventory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequestInventory), args.Error(1)
}

func (m *MockLedgerCollection) UpdateUsage(ctx context.Context, row models.ServiceRequestInventory) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockLedgerCollection) DeleteUsage(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerCollection) DeleteUsagesByServiceRequest(ctx context.Context, serviceRequestID int64) error {
	args := m.Called(ctx, serviceRequestID)
	return args.Error(0)
}

func (m *MockLedgerCollection) CountUsagesByInventory(ctx context.Context, inventoryID int64) (int64, error) {
	args := m.Called(ctx, inventoryID)
	return args.Get(0).(int64), args.Error(1)
}

// fakeTx runs the function in place. Rollback is not simulated; tests
// assert which writes were attempted.
type fakeTx struct {
	calls int
}

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type recordingNotifier struct {
	mu       sync.Mutex
	updates  []notify.ServiceRequestUpdate
	welcomes []string
}

func (n *recordingNotifier) NotifyServiceRequestUpdate(u notify.ServiceRequestUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
}

func (n *recordingNotifier) NotifyWelcome(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
}

type stubMailer struct {
	sent []notify.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg notify.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// mockStores holds one mock per collection.
type mockStores struct {
	tx              *fakeTx
	customers       *MockCustomerCollection
	vehicles        *MockVehicleCollection
	users           *MockUserCollection
	admins          *MockAdminCollection
	mechanics       *MockMechanicCollection
	serviceRequests *MockServiceRequestCollection
	inventories     *MockInventoryCollection
	ledger          *MockLedgerCollection
}

func newMockStores() *mockStores {
	return &mockStores{
		tx:              &fakeTx{},
		customers:       &MockCustomerCollection{},
		vehicles:        &MockVehicleCollection{},
		users:           &MockUserCollection{},
		admins:          &MockAdminCollection{},
		mechanics:       &MockMechanicCollection{},
		serviceRequests: &MockServiceRequestCollection{},
		inventories:     &MockInventoryCollection{},
		ledger:          &MockLedgerCollection{},
	}
}

func (m *mockStores) stores() Stores {
	return Stores{
		Tx:              m.tx,
		Customers:       m.customers,
		Vehicles:        m.vehicles,
		Users:           m.users,
		Admins:          m.admins,
		Mechanics:       m.mechanics,
		ServiceRequests: m.serviceRequests,
		Inventories:     m.inventories,
		Ledger:          m.ledger,
	}
}

var (
	_ db.TxRunner     = (*fakeTx)(nil)
	_ notify.Notifier = (*recordingNotifier)(nil)
	_ notify.Mailer   = (*stubMailer)(nil)
)
