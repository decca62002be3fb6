package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"gorm.io/gorm"
)

type Repository interface {
	ListExcluding(ctx context.Context, db *gorm.DB, excludeID snowflake.ID) ([]authdomain.User, error)
	DeleteUser(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
