package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByOwner(ctx context.Context, db *gorm.DB, owner string) ([]Invoice, error)
	FindByIdentifier(ctx context.Context, db *gorm.DB, owner string, ident Identifier) (*Invoice, error)
	Save(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
