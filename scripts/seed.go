package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"voyages-server/models"
	"voyages-server/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeds a development database with the demo accounts and catalog.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: could not load .env file")
	}

	db := storage.InitializeDB()

	if err := wipe(db); err != nil {
		log.Fatalf("Error wiping tables: %v", err)
	}

	admin, user, err := seedUsers(db)
	if err != nil {
		log.Fatalf("Error seeding users: %v", err)
	}

	destinations, err := seedDestinations(db)
	if err != nil {
		log.Fatalf("Error seeding destinations: %v", err)
	}

	if err := seedReservation(db, user, destinations[0]); err != nil {
		log.Fatalf("Error seeding reservation: %v", err)
	}

	fmt.Printf("Seed completed: admin=%s user=%s destinations=%d\n", admin.Email, user.Email, len(destinations))
}

func wipe(db *gorm.DB) error {
	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.Reservation{}, &models.Destination{}, &models.User{}} {
		if err := session.Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB) (*models.User, *models.User, error) {
	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	userPassword, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	admin := models.User{
		FirstName: "Admin",
		LastName:  "System",
		Email:     "admin@voyages.com",
		Password:  string(adminPassword),
		Role:      models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, nil, err
	}

	user := models.User{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "user@voyages.com",
		Password:  string(userPassword),
		Role:      models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, nil, err
	}

	return &admin, &user, nil
}

func seedDestinations(db *gorm.DB) ([]models.Destination, error) {
	available := true
	destinations := []models.Destination{
		{
			Name:         "Paris Romance",
			Description:  "Romantic weekend in Paris with a visit to the Eiffel Tower",
			Country:      "France",
			City:         "Paris",
			Price:        1200,
			Duration:     3,
			Available:    &available,
			Features:     featureList("Eiffel Tower", "Seine cruise", "Louvre Museum"),
			MaxTravelers: 8,
		},
		{
			Name:         "Bali Paradis",
			Description:  "Relaxing stay in Bali with beaches and temples",
			Country:      "Indonesia",
			City:         "Denpasar",
			Price:        1500,
			Duration:     7,
			Available:    &available,
			Features:     featureList("White sand beaches", "Balinese temples", "Spa"),
			MaxTravelers: 6,
		},
		{
			Name:         "New York Adventure",
			Description:  "Discover the city that never sleeps",
			Country:      "USA",
			City:         "New York",
			Price:        1800,
			Duration:     5,
			Available:    &available,
			Features:     featureList("Statue of Liberty", "Central Park", "Broadway"),
			MaxTravelers: 10,
		},
	}

	if err := db.Create(&destinations).Error; err != nil {
		return nil, err
	}
	return destinations, nil
}

func seedReservation(db *gorm.DB, user *models.User, destination models.Destination) error {
	start := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, destination.Duration)
	days := destination.Duration
	travelers := 2

	reservation := models.Reservation{
		UserID:        user.ID,
		DestinationID: destination.ID,
		StartDate:     start,
		EndDate:       end,
		Travelers:     travelers,
		TotalPrice:    destination.Price * float64(travelers) * float64(days),
		Status:        models.StatusConfirmed,
	}
	return db.Create(&reservation).Error
}

func featureList(features ...string) datatypes.JSON {
	raw, _ := json.Marshal(features)
	return datatypes.JSON(raw)
}
