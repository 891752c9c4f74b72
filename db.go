package main

import (
	"log"
	"os"
	"strings"

	"perpusku/models"
	"perpusku/pkg/circulation"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	circ *circulation.Service
)

func initDB() {
	var err error
	// Postgres when DB_DSN is set; the default is the desktop app's local
	// SQLite file.
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "library.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}
	circ = circulation.NewService(db)

	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		for _, m := range []interface{}{
			&models.Book{},
			&models.Member{},
			&models.Loan{},
			&models.Fine{},
			&models.User{},
			&models.Setting{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Printf("migration warning: %v", err)
			}
		}
	}
	seedDB()
}

func seedDB() {
	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// The password is stored the way the desktop app always stored it:
		// plain text. See auth.go for the versioned bcrypt alternative.
		admin := models.User{Username: "admin", Password: "admin123", Name: "Administrator", Role: "admin"}
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}

	// Default settings, only where the key is not present yet
	defaults := map[string]string{
		"library_name":       "Perpustakaan Sekolah",
		"loan_duration_days": "7",
	}
	for k, v := range defaults {
		var cnt int64
		db.Model(&models.Setting{}).Where("key = ?", k).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.Setting{Key: k, Value: v})
		}
	}

	ensureCoverBase()
}

// ensureCoverBase creates the base directory for processed cover images.
func ensureCoverBase() {
	base := coverBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create cover base dir %s: %v", base, err)
	}
}

// coverBaseDir returns the directory for cover images (configurable via COVER_BASE env)
func coverBaseDir() string {
	if v := os.Getenv("COVER_BASE"); v != "" {
		return v
	}
	return "covers"
}
