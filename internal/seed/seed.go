// Package seed bootstraps the default admin account for fresh installs.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/auth/password"
	"github.com/vendorly/invoicedesk/internal/config"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultAdminName = "Administrator"

// EnsureDefaultAdmin creates the bootstrap admin when the user table is
// empty. A configured password is required; an empty password leaves the
// install without accounts rather than seeding a guessable one.
func EnsureDefaultAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if cfg.BootstrapAdminPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		admin := authdomain.User{
			ID:           node.Generate(),
			Name:         defaultAdminName,
			Email:        cfg.BootstrapAdminEmail,
			PasswordHash: &hashed,
			Role:         authdomain.RoleAdmin,
			Metadata:     datatypes.JSONMap{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&admin).Error
	})
}
