package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *BusinessProfile) error
	FindByOwner(ctx context.Context, db *gorm.DB, owner string) (*BusinessProfile, error)
	FindByID(ctx context.Context, db *gorm.DB, owner string, id snowflake.ID) (*BusinessProfile, error)
	Save(ctx context.Context, db *gorm.DB, profile *BusinessProfile) error
}
