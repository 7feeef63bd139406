package repository

import (
	"context"
	"errors"

	"github.com/billcraft/billcraft/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, owner string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner = ?", owner).
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByIdentifier always conjoins the owner filter, so a record that
// exists under a different owner is indistinguishable from no record.
func (r *repo) FindByIdentifier(ctx context.Context, db *gorm.DB, owner string, ident domain.Identifier) (*domain.Invoice, error) {
	stmt := db.WithContext(ctx).Where("owner = ?", owner)
	if ident.ByID() {
		stmt = stmt.Where("id = ?", ident.ID)
	} else {
		stmt = stmt.Where("invoice_number = ?", ident.Number)
	}

	var invoice domain.Invoice
	err := stmt.First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Save(invoice).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}
