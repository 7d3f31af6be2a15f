package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/config"
	"github.com/ukydev/mobile-garage/internal/db"
	"github.com/ukydev/mobile-garage/internal/logging"
	"github.com/ukydev/mobile-garage/internal/models"
)

// Towns and vehicles used for the randomly generated customers.
var (
	towns  = []string{"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret", "Thika"}
	makes  = []string{"Toyota", "Nissan", "Mazda", "Subaru", "Honda", "Mitsubishi"}
	issues = []string{"Engine overheating", "Flat tyre", "Battery dead", "Brake noise", "Gearbox slipping", "Check engine light"}
)

var vehicleModels = map[string][]string{
	"Toyota":     {"Corolla", "Vitz", "Premio", "Hilux"},
	"Nissan":     {"Note", "X-Trail", "Navara"},
	"Mazda":      {"Demio", "Cx-5", "Axela"},
	"Subaru":     {"Forester", "Impreza", "Outback"},
	"Honda":      {"Civic", "Fit", "Cr-V"},
	"Mitsubishi": {"Pajero", "Outlander"},
}

type seeder struct {
	store *db.Store
	auth  *auth.Service
	now   time.Time
}

func (s *seeder) user(ctx context.Context, email, password string, profile models.Profile) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := models.NewUser(email, hash, profile)
	return s.store.Users.InsertUser(ctx, &u)
}

func (s *seeder) customer(ctx context.Context, name, phone, location, email string) (*models.Customer, error) {
	c := &models.Customer{Name: name, PhoneNumber: phone, Location: location}
	if err := s.store.Customers.InsertCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("customer %s: %w", name, err)
	}
	return c, s.user(ctx, email, "password123", models.CustomerProfile(c.ID))
}

func (s *seeder) mechanic(ctx context.Context, m *models.Mechanic) error {
	if err := s.store.Mechanics.InsertMechanic(ctx, m); err != nil {
		return fmt.Errorf("mechanic %s: %w", m.Name, err)
	}
	return s.user(ctx, m.Email, "mechpass", models.MechanicProfile(m.ID))
}

func (s *seeder) request(ctx context.Context, c *models.Customer, v *models.Vehicle, mechanicID int64, issue string) (*models.ServiceRequest, error) {
	r := &models.ServiceRequest{
		Issue:       issue,
		Location:    c.Location,
		Status:      models.StatusPending,
		RequestedAt: s.now,
		CustomerID:  c.ID,
		VehicleID:   v.ID,
	}
	if mechanicID != 0 {
		r.MechanicID = &mechanicID
	}
	return r, s.store.ServiceRequests.InsertServiceRequest(ctx, r)
}

// fixtures loads the fixed demo data set.
func (s *seeder) fixtures(ctx context.Context) error {
	john, err := s.customer(ctx, "John Doe", "0712345678", "Nairobi", "john@example.com")
	if err != nil {
		return err
	}
	jane, err := s.customer(ctx, "Jane Smith", "0798765432", "Mombasa", "jane@example.com")
	if err != nil {
		return err
	}

	corolla := &models.Vehicle{Make: "Toyota", Model: "Corolla", YearOfManufacture: 2015, CustomerID: john.ID}
	civic := &models.Vehicle{Make: "Honda", Model: "Civic", YearOfManufacture: 2018, CustomerID: jane.ID}
	for _, v := range []*models.Vehicle{corolla, civic} {
		if err := s.store.Vehicles.InsertVehicle(ctx, v); err != nil {
			return err
		}
	}

	admin := &models.Admin{Name: "Alice Admin", PhoneNumber: "0700111222"}
	if err := s.store.Admins.InsertAdmin(ctx, admin); err != nil {
		return err
	}
	if err := s.user(ctx, "alice@example.com", "adminpass", models.AdminProfile(admin.ID)); err != nil {
		return err
	}

	bobRating, charlieRating := 4.5, 4.2
	bob := &models.Mechanic{
		Name: "Bob Mechanic", Specialty: "Engine Repair", Location: "Nairobi",
		PhoneNumber: "0700333444", Email: "bob@example.com",
		ExperienceYears: 5, Status: models.MechanicAvailable, Rating: &bobRating,
	}
	charlie := &models.Mechanic{
		Name: "Charlie Mechanic", Specialty: "Brake Systems", Location: "Mombasa",
		PhoneNumber: "0700555666", Email: "charlie@example.com",
		ExperienceYears: 3, Status: models.MechanicAvailable, Rating: &charlieRating,
	}
	for _, m := range []*models.Mechanic{bob, charlie} {
		if err := s.mechanic(ctx, m); err != nil {
			return err
		}
	}

	brakePad := &models.Inventory{Name: "Brake Pad", Quantity: 50, Price: 1500, Threshold: models.DefaultThreshold}
	oilFilter := &models.Inventory{Name: "Oil Filter", Quantity: 100, Price: 800, Threshold: models.DefaultThreshold}
	for _, item := range []*models.Inventory{brakePad, oilFilter} {
		if err := s.store.Inventories.InsertInventory(ctx, item); err != nil {
			return err
		}
	}

	overheating, err := s.request(ctx, john, corolla, bob.ID, "Engine overheating")
	if err != nil {
		return err
	}
	brakes, err := s.request(ctx, jane, civic, charlie.ID, "Brake failure")
	if err != nil {
		return err
	}

	if _, _, err := s.store.Ledger.AddUsage(ctx, overheating.ID, oilFilter.ID, 2); err != nil {
		return err
	}
	_, _, err = s.store.Ledger.AddUsage(ctx, brakes.ID, brakePad.ID, 1)
	return err
}

// fleet adds n random customers, each with a vehicle and an open request.
func (s *seeder) fleet(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		town := towns[rand.Intn(len(towns))]
		c, err := s.customer(ctx,
			fmt.Sprintf("Demo Customer %d", i+1),
			fmt.Sprintf("07%08d", 20000000+i),
			town,
			fmt.Sprintf("demo%d@example.com", i+1),
		)
		if err != nil {
			return err
		}

		brand := makes[rand.Intn(len(makes))]
		choices := vehicleModels[brand]
		v := &models.Vehicle{
			Make:              brand,
			Model:             choices[rand.Intn(len(choices))],
			YearOfManufacture: 2005 + rand.Intn(s.now.Year()-2004),
			CustomerID:        c.ID,
		}
		if err := s.store.Vehicles.InsertVehicle(ctx, v); err != nil {
			return err
		}
		if _, err := s.request(ctx, c, v, 0, issues[rand.Intn(len(issues))]); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	extra := 0
	if val := os.Getenv("SEED_EXTRA_CUSTOMERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			extra = n
		}
	}

	log.WithFields(log.Fields{
		"database":        cfg.MongoDB,
		"extra_customers": extra,
	}).Info("Seeding database")

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := db.NewStore(client, cfg.MongoDB)
	if err := store.Database().Drop(ctx); err != nil {
		log.WithError(err).Fatal("Failed to wipe database")
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	s := &seeder{
		store: store,
		auth:  auth.NewService(cfg.JWTSecret, cfg.JWTExpiry, nil),
		now:   time.Now().UTC(),
	}
	if err := s.fixtures(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load fixtures")
	}
	if err := s.fleet(ctx, extra); err != nil {
		log.WithError(err).Fatal("Failed to generate customers")
	}

	log.Info("Database seeded successfully")
}
