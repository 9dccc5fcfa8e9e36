// seed заполняет пустую БД демонстрационными пользователями и печатает
// JWT для ручной проверки API.
package main

import (
	"errors"
	"fmt"

	"homefix_backend/database"
	"homefix_backend/internal/auth"
	"homefix_backend/internal/config"
	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"

	"gorm.io/gorm"
)

const seedPassword = "password123"

type seedWorker struct {
	name    string
	email   string
	service models.ServiceCategory
	lat     float64
	lng     float64
	city    string
	rate    float64
}

var seedWorkers = []seedWorker{
	{"Ravi Kumar", "ravi@homefix.local", models.ServicePainter, 19.0760, 72.8777, "Mumbai", 45},
	{"Asha Patel", "asha@homefix.local", models.ServiceElectrician, 19.0896, 72.8656, "Mumbai", 60},
	{"Imran Shaikh", "imran@homefix.local", models.ServicePlumber, 19.1136, 72.8697, "Mumbai", 50},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(logger.Options{Env: cfg.Server.Env, Level: cfg.Server.LogLevel})

	db, err := database.Open(cfg.Database, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		logger.Fatal("Failed to hash password", "error", err)
	}

	users := repositories.NewUserRepository()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	err = db.Transaction(func(tx *gorm.DB) error {
		homeowner, err := ensureUser(tx, users, &models.User{
			Name:         "Demo Homeowner",
			Email:        "owner@homefix.local",
			Phone:        "555-0100",
			PasswordHash: hash,
			Role:         models.UserRoleHomeowner,
		})
		if err != nil {
			return err
		}
		printToken(tokens, homeowner)

		for _, sw := range seedWorkers {
			user, err := ensureUser(tx, users, &models.User{
				Name:         sw.name,
				Email:        sw.email,
				Phone:        "555-0200",
				PasswordHash: hash,
				Role:         models.UserRoleWorker,
			})
			if err != nil {
				return err
			}
			if err := ensureProfile(tx, user, sw); err != nil {
				return err
			}
			printToken(tokens, user)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("Seed failed", "error", err)
	}
	logger.Info("Seed completed", "password", seedPassword)
}

// ensureUser — повторный запуск не дублирует пользователей
func ensureUser(tx *gorm.DB, users repositories.UserRepository, user *models.User) (*models.User, error) {
	existing, err := users.FindByEmail(tx, user.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}
	if err := users.Create(tx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func ensureProfile(tx *gorm.DB, user *models.User, sw seedWorker) error {
	var count int64
	if err := tx.Model(&models.WorkerProfile{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	lat, lng := sw.lat, sw.lng
	profile := &models.WorkerProfile{
		UserID:          user.ID,
		ServiceType:     sw.service,
		ExperienceYears: 5,
		HourlyRate:      sw.rate,
		MinCharge:       sw.rate,
		Availability:    models.AvailabilityAvailable,
		Latitude:        &lat,
		Longitude:       &lng,
		City:            sw.city,
		State:           "MH",
		Verified:        true,
	}
	profile.SetSkills([]string{string(sw.service)})
	return tx.Create(profile).Error
}

func printToken(tokens *auth.TokenManager, user *models.User) {
	token, err := tokens.Generate(user.ID, user.Role)
	if err != nil {
		logger.Warn("Token not generated", "user", user.Email, "error", err.Error())
		return
	}
	fmt.Printf("%-10s %-24s %s\n", user.Role, user.Email, token)
}
