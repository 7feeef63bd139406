package repository

import (
	"context"
	"errors"

	"github.com/billcraft/billcraft/internal/profile/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.BusinessProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, owner string) (*domain.BusinessProfile, error) {
	var profile domain.BusinessProfile
	err := db.WithContext(ctx).
		Where("owner = ?", owner).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByID conjoins the owner filter; a profile held by another owner
// is indistinguishable from no profile.
func (r *repo) FindByID(ctx context.Context, db *gorm.DB, owner string, id snowflake.ID) (*domain.BusinessProfile, error) {
	var profile domain.BusinessProfile
	err := db.WithContext(ctx).
		Where("owner = ? AND id = ?", owner, id).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, profile *domain.BusinessProfile) error {
	return db.WithContext(ctx).Save(profile).Error
}
