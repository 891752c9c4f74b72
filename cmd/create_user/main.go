package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"perpusku/models"
)

func main() {
	var role, name string
	var useBcrypt bool
	flag.StringVar(&role, "role", "staff", "role for the new user")
	flag.StringVar(&name, "name", "", "display name (defaults to username)")
	flag.BoolVar(&useBcrypt, "bcrypt", false, "store the password in the versioned bcrypt format instead of plain text")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [-role r] [-name n] [-bcrypt] <username> <password>")
		os.Exit(2)
	}
	username := flag.Arg(0)
	password := flag.Arg(1)
	if name == "" {
		name = username
	}

	db, err := openDB()
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	stored := password
	if useBcrypt {
		hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("bcrypt failed: %v", err)
		}
		stored = string(hpw)
	}
	user := models.User{Username: username, Password: stored, Name: name, Role: role}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s (id=%d, role=%s)\n", username, user.ID, role)
}

func openDB() (*gorm.DB, error) {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "library.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}
