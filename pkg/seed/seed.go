package seed

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"orangerides_backend/internal/model"
)

// SeedAdminUser bootstraps the admin account from the environment. The
// plan catalog lives in code, so the only row the app needs at first
// boot is an admin who can approve owners and listings.
func SeedAdminUser(db *gorm.DB) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var existing model.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := model.User{
		Email:      adminEmail,
		Password:   string(hashed),
		Username:   "admin",
		Role:       model.RoleAdmin,
		FirstName:  "Admin",
		IsVerified: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Error creating admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully!")
}
