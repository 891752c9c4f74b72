package main

import (
	"errors"
	"fmt"
	"strings"

	"perpusku/models"

	"golang.org/x/crypto/bcrypt"
)

// Operator-facing auth errors, matching the desktop client's messages.
var (
	errInvalidCredentials = errors.New("Username atau password salah")
	errWrongOldPassword   = errors.New("Kata sandi lama salah")
)

// Authenticate checks a username/password pair against the users table.
// Passwords are stored and compared as plain text for parity with the
// desktop app's database. Stored values in the versioned bcrypt format
// ("$2" prefix, written by cmd/create_user -bcrypt) are verified with
// bcrypt instead.
func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, errInvalidCredentials
	}
	if !passwordMatches(user.Password, password) {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return stored == supplied
}

// ChangePassword verifies the old password before storing the new one. The
// new value is written in the legacy plain format so the stored contract
// stays unchanged.
func ChangePassword(userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !passwordMatches(user.Password, oldPassword) {
		return errWrongOldPassword
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("password", newPassword).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
