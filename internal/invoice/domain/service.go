package domain

import (
	"context"
	"errors"
)

type CreateInvoiceRequest struct {
	InvoiceNumber string
	IssueDate     string
	DueDate       string

	FromBusinessName string
	FromEmail        string
	FromAddress      string
	FromPhone        string
	FromGst          string

	Client ClientInfo
	Items  []LineItem

	Currency   string
	Status     string
	TaxPercent *float64

	LogoURL      string
	StampURL     string
	SignatureURL string

	SignatureName  string
	SignatureTitle string
	Notes          string
}

// InvoicePatch carries a partial update. Nil fields are left untouched;
// totals are recomputed from the effective items and tax percent.
type InvoicePatch struct {
	InvoiceNumber *string
	IssueDate     *string
	DueDate       *string

	FromBusinessName *string
	FromEmail        *string
	FromAddress      *string
	FromPhone        *string
	FromGst          *string

	Client *ClientInfo
	Items  *[]LineItem

	Currency   *string
	Status     *string
	TaxPercent *float64

	LogoURL      *string
	StampURL     *string
	SignatureURL *string

	SignatureName  *string
	SignatureTitle *string
	Notes          *string
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	GetByIdentifier(ctx context.Context, candidate string) (Invoice, error)
	Update(ctx context.Context, candidate string, patch InvoicePatch) (Invoice, error)
	Delete(ctx context.Context, candidate string) error
}

var (
	ErrNoOwner             = errors.New("authentication_required")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidIssueDate    = errors.New("invalid_issue_date")
	ErrInvalidBusinessName = errors.New("invalid_business_name")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTaxPercent   = errors.New("invalid_tax_percent")
	ErrDuplicateNumber     = errors.New("duplicate_invoice_number")
)
