package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/directory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListExcluding(ctx context.Context, db *gorm.DB, excludeID snowflake.ID) ([]authdomain.User, error) {
	var users []authdomain.User
	err := db.WithContext(ctx).
		Model(&authdomain.User{}).
		Where("id <> ?", excludeID).
		Order("name asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) DeleteUser(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&authdomain.Session{}).Error; err != nil {
		return err
	}

	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&authdomain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return authdomain.ErrUserNotFound
	}
	return nil
}
