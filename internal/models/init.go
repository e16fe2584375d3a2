package models

import (
	"github.com/fleetdesk/fleetdesk/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultDispatcher creates the first dispatcher account when the table is
// empty, so a fresh install can log in.
func InitDefaultDispatcher(username, password string) error {
	var count int64
	DB.Model(&Dispatcher{}).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "dispatch"
	}
	if password == "" {
		password = "dispatch123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	dispatcher := Dispatcher{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := DB.Create(&dispatcher).Error; err != nil {
		return err
	}

	if password == "dispatch123" {
		logger.Warnw("default_dispatcher_created_with_default_password", "username", username)
		logger.Warnw("default_dispatcher_password_change_required", "username", username)
	} else {
		logger.Warnw("default_dispatcher_created", "username", username, "password_hidden", true)
	}
	return nil
}
