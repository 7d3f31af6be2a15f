package handlers

import (
	"context"
	"errors"

	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/models"
)

// Stores bundles the collections the handlers read and write. Tx runs
// multi-record writes atomically.
type Stores struct {
	Tx              db.TxRunner
	Customers       db.CustomerCollection
	Vehicles        db.VehicleCollection
	Users           db.UserCollection
	Admins          db.AdminCollection
	Mechanics       db.MechanicCollection
	ServiceRequests db.ServiceRequestCollection
	Inventories     db.InventoryCollection
	Ledger          db.LedgerCollection
}

// StoresFrom exposes a MongoDB store through the handler interfaces.
func StoresFrom(s *db.Store) Stores {
	return Stores{
		Tx:              s,
		Customers:       s.Customers,
		Vehicles:        s.Vehicles,
		Users:           s.Users,
		Admins:          s.Admins,
		Mechanics:       s.Mechanics,
		ServiceRequests: s.ServiceRequests,
		Inventories:     s.Inventories,
		Ledger:          s.Ledger,
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	return err
}

// deleteCustomerRecords removes a customer with its vehicles and login.
// Customers with service requests on file are kept.
func (s Stores) deleteCustomerRecords(ctx context.Context, customerID int64) error {
	n, err := s.ServiceRequests.CountServiceRequests(ctx, db.ServiceRequestFilter{CustomerID: &customerID})
	if err != nil {
		return err
	}
	if n > 0 {
		return errCustomerHasRequests()
	}
	if err := s.Customers.DeleteCustomer(ctx, customerID); err != nil {
		return err
	}
	if err := s.Vehicles.DeleteVehiclesByCustomer(ctx, customerID); err != nil {
		return err
	}
	return ignoreNotFound(s.Users.DeleteUserByProfile(ctx, models.CustomerProfile(customerID)))
}

// deleteMechanicRecords removes a mechanic with its login and releases the
// mechanic's assigned requests.
func (s Stores) deleteMechanicRecords(ctx context.Context, mechanicID int64) error {
	if err := s.Mechanics.DeleteMechanic(ctx, mechanicID); err != nil {
		return err
	}
	if err := s.ServiceRequests.UnassignMechanic(ctx, mechanicID); err != nil {
		return err
	}
	return ignoreNotFound(s.Users.DeleteUserByProfile(ctx, models.MechanicProfile(mechanicID)))
}

func (s Stores) deleteAdminRecords(ctx context.Context, adminID int64) error {
	if err := s.Admins.DeleteAdmin(ctx, adminID); err != nil {
		return err
	}
	return ignoreNotFound(s.Users.DeleteUserByProfile(ctx, models.AdminProfile(adminID)))
}

// profileExists checks that the record a profile points to is on file.
func (s Stores) profileExists(ctx context.Context, p models.Profile) error {
	var err error
	switch p.Role() {
	case models.RoleCustomer:
		_, err = s.Customers.FindCustomerByID(ctx, p.ID())
	case models.RoleAdmin:
		_, err = s.Admins.FindAdminByID(ctx, p.ID())
	case models.RoleMechanic:
		_, err = s.Mechanics.FindMechanicByID(ctx, p.ID())
	}
	return err
}

// profileName returns the display name of the record a profile points to.
func (s Stores) profileName(ctx context.Context, p models.Profile) (string, error) {
	switch p.Role() {
	case models.RoleCustomer:
		c, err := s.Customers.FindCustomerByID(ctx, p.ID())
		if err != nil {
			return "", err
		}
		return c.Name, nil
	case models.RoleAdmin:
		a, err := s.Admins.FindAdminByID(ctx, p.ID())
		if err != nil {
			return "", err
		}
		return a.Name, nil
	case models.RoleMechanic:
		m, err := s.Mechanics.FindMechanicByID(ctx, p.ID())
		if err != nil {
			return "", err
		}
		return m.Name, nil
	}
	return "", db.ErrNotFound
}
