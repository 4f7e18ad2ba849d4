package seed

import (
	"subsidy/config"
	"subsidy/internal/logger"
	. "subsidy/internal/models"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			FirstName:   "Marta",
			LastName:    "Iglesias",
			DisplayName: "Marta Iglesias",
			Email:       stringPtr("marta.iglesias@example.com"),
			Login:       "marta",
			Password:    "password",
			Role:        RoleFidu,
		}, {
			FirstName:   "Jon",
			LastName:    "Etxeberria",
			DisplayName: "Jon Etxeberria",
			Email:       stringPtr("jon.etxeberria@example.com"),
			Login:       "jon",
			Password:    "password",
			Role:        RoleFidu,
		}, {
			FirstName:   "Leire",
			LastName:    "Aguirre",
			DisplayName: "Leire Aguirre",
			Email:       stringPtr("leire.aguirre@example.com"),
			Login:       "leire",
			Password:    "password",
			Role:        RoleAgent,
		}, {
			FirstName:   "Ander",
			LastName:    "Mendoza",
			DisplayName: "Ander Mendoza",
			Email:       stringPtr("ander.mendoza@example.com"),
			Login:       "ander",
			Password:    "password",
			Role:        RoleAgent,
		}, {
			FirstName:   "Nerea",
			LastName:    "Zubiri",
			DisplayName: "Nerea Zubiri",
			Email:       stringPtr("nerea.zubiri@example.com"),
			Login:       "nerea",
			Password:    "password",
			Role:        RoleValidator,
		}, {
			FirstName:   "Admin",
			LastName:    "User",
			DisplayName: "Admin",
			Email:       stringPtr("admin@example.com"),
			Login:       "admin",
			Password:    "password",
			IsAdmin:     true,
		},
	}

	for _, user := range users {
		var existingUser User
		if err := db.First(&existingUser, "login = ?", user.Login).Error; err == nil {
			log.Info("User already exists", "login", user.Login)
			continue
		}
		log.Info("Seeding user", "login", user.Login, "role", user.Role)
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "login", user.Login)
		}
	}

	return nil
}
