package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/mobile-garage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo("mongodb://bad:uri")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestInsertCustomer_NilCollection(t *testing.T) {
	coll := &MongoCustomerCollection{Collection: nil}
	err := coll.InsertCustomer(context.Background(), &models.Customer{Name: "x"})
	assert.ErrorIs(t, err, errNilCollection)

	_, err = (&MongoInventoryCollection{}).AdjustQuantity(context.Background(), 1, -1)
	assert.ErrorIs(t, err, errNilCollection)

	_, _, err = (&MongoLedgerCollection{}).AddUsage(context.Background(), 1, 1, 1)
	assert.ErrorIs(t, err, errNilCollection)
}

func TestTranslateWriteError_DuplicateKey(t *testing.T) {
	raw := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: garage.users index: uniq_email dup key: { email: "a@b.com" }`,
	}}}

	err := translateWriteError(usersCollection, raw)

	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
	assert.Equal(t, usersCollection, dup.Collection)
	assert.Nil(t, translateWriteError(usersCollection, nil))

	other := errors.New("boom")
	assert.Equal(t, other, translateWriteError(usersCollection, other))
}

func TestTranslateFindError(t *testing.T) {
	assert.ErrorIs(t, translateFindError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translateFindError(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), ErrNotFound)
}

func TestServiceRequestFilter_toBSON(t *testing.T) {
	assert.Equal(t, bson.M{}, ServiceRequestFilter{}.toBSON())

	c, m := int64(3), int64(9)
	assert.Equal(t,
		bson.M{"customer_id": int64(3), "mechanic_id": int64(9)},
		ServiceRequestFilter{CustomerID: &c, MechanicID: &m}.toBSON())
}

// testStore connects to MONGO_TEST_URI, which must be a replica set so that
// transactions work. Each test gets its own database.
func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}
	client, err := ConnectMongo(uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	name := fmt.Sprintf("garage_test_%d", time.Now().UnixNano())
	store := NewStore(client, name)
	require.NoError(t, store.EnsureIndexes(context.Background()))
	t.Cleanup(func() {
		_ = store.Database().Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return store
}

func TestSequence_Integration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a := &models.Customer{Name: "Ann", PhoneNumber: "0712345678"}
	b := &models.Customer{Name: "Ben", PhoneNumber: "0712345679"}
	require.NoError(t, store.Customers.InsertCustomer(ctx, a))
	require.NoError(t, store.Customers.InsertCustomer(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	dup := &models.Customer{Name: "Cat", PhoneNumber: "0712345678"}
	err := store.Customers.InsertCustomer(ctx, dup)
	var dupErr *DuplicateKeyError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "phone_number", dupErr.Field)
}

func TestLedger_AddUsageAccumulates_Integration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, created, err := store.Ledger.AddUsage(ctx, 10, 20, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, first.UsedQuantity)

	second, created, err := store.Ledger.AddUsage(ctx, 10, 20, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 6, second.UsedQuantity)

	rows, err := store.Ledger.FindUsages(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInventory_AdjustQuantity_Integration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	item := &models.Inventory{Name: "Brake Pads", Quantity: 4, Price: 25, Threshold: models.DefaultThreshold}
	require.NoError(t, store.Inventories.InsertInventory(ctx, item))

	_, err := store.Inventories.AdjustQuantity(ctx, item.ID, -5)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	got, err := store.Inventories.FindInventoryByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)

	got, err = store.Inventories.AdjustQuantity(ctx, item.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	got, err = store.Inventories.AdjustQuantity(ctx, item.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	_, err = store.Inventories.AdjustQuantity(ctx, 999, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	low, err := store.Inventories.CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), low)
}

func TestWithTransaction_RollsBack_Integration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	existing := models.NewUser("taken@garage.com", "hash", models.AdminProfile(1))
	require.NoError(t, store.Users.InsertUser(ctx, &existing))

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		m := &models.Mechanic{Name: "Moe", PhoneNumber: "0700000001", Email: "moe@garage.com"}
		if err := store.Mechanics.InsertMechanic(ctx, m); err != nil {
			return err
		}
		u := models.NewUser("taken@garage.com", "hash", models.MechanicProfile(m.ID))
		return store.Users.InsertUser(ctx, &u)
	})
	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))

	n, err := store.Mechanics.CountMechanics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestServiceRequests_CountByStatus_Integration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, status := range []string{models.StatusPending, models.StatusPending, models.StatusCompleted} {
		req := &models.ServiceRequest{Issue: "noise", CustomerID: 1, VehicleID: 1, Status: status}
		require.NoError(t, store.ServiceRequests.InsertServiceRequest(ctx, req))
	}

	counts, err := store.ServiceRequests.CountServiceRequestsByStatus(ctx, ServiceRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusCompleted])
}
