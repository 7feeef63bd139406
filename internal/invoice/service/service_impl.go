package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/invoice/domain"
	"github.com/billcraft/billcraft/internal/invoice/totals"
	"github.com/billcraft/billcraft/internal/ownerctx"
	profiledomain "github.com/billcraft/billcraft/internal/profile/domain"
	"github.com/billcraft/billcraft/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds the regenerate-and-retry loop when a
// generated invoice number collides with an existing one. The unique
// index on (owner, invoice_number) is the actual guarantee; randomness
// alone is not trusted.
const maxNumberAttempts = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	GenID    *snowflake.Node
	Repo     domain.Repository
	Profiles profiledomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      config.Config
	genID    *snowflake.Node
	repo     domain.Repository
	profiles profiledomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		cfg:      p.Cfg,
		genID:    p.GenID,
		repo:     p.Repo,
		profiles: p.Profiles,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrNoOwner
	}

	issueDate := strings.TrimSpace(req.IssueDate)
	if issueDate == "" {
		return domain.Invoice{}, domain.ErrInvalidIssueDate
	}

	status := domain.InvoiceStatusDraft
	if trimmed := strings.TrimSpace(req.Status); trimmed != "" {
		status = domain.InvoiceStatus(trimmed)
		if !status.Valid() {
			return domain.Invoice{}, domain.ErrInvalidStatus
		}
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	from := issuerSnapshot{
		BusinessName: strings.TrimSpace(req.FromBusinessName),
		Email:        strings.TrimSpace(req.FromEmail),
		Address:      req.FromAddress,
		Phone:        strings.TrimSpace(req.FromPhone),
		Gst:          strings.TrimSpace(req.FromGst),
	}
	taxPercent := req.TaxPercent

	// Issuer fields left blank are snapshotted from the owner's business
	// profile at creation time. The copy is deliberate: editing the
	// profile later must not change an issued invoice.
	if from.BusinessName == "" || taxPercent == nil {
		profile, err := s.profiles.FindByOwner(ctx, s.db, owner)
		if err != nil {
			return domain.Invoice{}, err
		}
		if profile != nil {
			if from.BusinessName == "" {
				from = issuerSnapshot{
					BusinessName: profile.BusinessName,
					Email:        profile.Email,
					Address:      profile.Address,
					Phone:        profile.Phone,
					Gst:          profile.Gst,
				}
			}
			if taxPercent == nil {
				taxPercent = &profile.DefaultTaxPercent
			}
		}
	}
	if from.BusinessName == "" {
		return domain.Invoice{}, domain.ErrInvalidBusinessName
	}

	effectiveTax := s.cfg.DefaultTaxPercent
	if taxPercent != nil {
		if *taxPercent < 0 {
			return domain.Invoice{}, domain.ErrInvalidTaxPercent
		}
		effectiveTax = *taxPercent
	}

	derived := totals.Compute(req.Items, effectiveTax)
	now := time.Now().UTC()

	invoice := domain.Invoice{
		Owner:            owner,
		IssueDate:        issueDate,
		DueDate:          strings.TrimSpace(req.DueDate),
		FromBusinessName: from.BusinessName,
		FromEmail:        from.Email,
		FromAddress:      from.Address,
		FromPhone:        from.Phone,
		FromGst:          from.Gst,
		Client:           req.Client,
		Items:            req.Items,
		Currency:         currency,
		Status:           status,
		TaxPercent:       effectiveTax,
		Subtotal:         derived.Subtotal,
		Tax:              derived.Tax,
		Total:            derived.Total,
		LogoURL:          req.LogoURL,
		StampURL:         req.StampURL,
		SignatureURL:     req.SignatureURL,
		SignatureName:    req.SignatureName,
		SignatureTitle:   req.SignatureTitle,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	explicitNumber := strings.TrimSpace(req.InvoiceNumber)

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		invoice.ID = s.genID.Generate()
		if explicitNumber != "" {
			invoice.InvoiceNumber = explicitNumber
		} else {
			invoice.InvoiceNumber = generateInvoiceNumber()
		}

		err := s.repo.Insert(ctx, s.db, &invoice)
		if err == nil {
			return invoice, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, err
		}
		if explicitNumber != "" {
			return domain.Invoice{}, domain.ErrDuplicateNumber
		}
		s.log.Warn("invoice number collision, regenerating",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Int("attempt", attempt+1),
		)
	}

	return domain.Invoice{}, domain.ErrDuplicateNumber
}

func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoOwner
	}
	return s.repo.FindByOwner(ctx, s.db, owner)
}

func (s *Service) GetByIdentifier(ctx context.Context, candidate string) (domain.Invoice, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrNoOwner
	}

	invoice, err := s.repo.FindByIdentifier(ctx, s.db, owner, domain.ResolveIdentifier(candidate))
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) Update(ctx context.Context, candidate string, patch domain.InvoicePatch) (domain.Invoice, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.Invoice{}, domain.ErrNoOwner
	}

	invoice, err := s.repo.FindByIdentifier(ctx, s.db, owner, domain.ResolveIdentifier(candidate))
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	if err := applyPatch(invoice, patch); err != nil {
		return domain.Invoice{}, err
	}

	// Totals always follow the effective items and tax percent; the
	// stored figures are never taken from the payload.
	derived := totals.Compute(invoice.Items, invoice.TaxPercent)
	invoice.Subtotal = derived.Subtotal
	invoice.Tax = derived.Tax
	invoice.Total = derived.Total
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateNumber
		}
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, candidate string) error {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.ErrNoOwner
	}

	invoice, err := s.repo.FindByIdentifier(ctx, s.db, owner, domain.ResolveIdentifier(candidate))
	if err != nil {
		return err
	}
	if invoice == nil {
		// Deleting a missing or foreign record is an error, not a no-op.
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, invoice.ID)
}

type issuerSnapshot struct {
	BusinessName string
	Email        string
	Address      string
	Phone        string
	Gst          string
}

func applyPatch(invoice *domain.Invoice, patch domain.InvoicePatch) error {
	if patch.InvoiceNumber != nil && strings.TrimSpace(*patch.InvoiceNumber) != "" {
		invoice.InvoiceNumber = strings.TrimSpace(*patch.InvoiceNumber)
	}
	if patch.IssueDate != nil {
		issueDate := strings.TrimSpace(*patch.IssueDate)
		if issueDate == "" {
			return domain.ErrInvalidIssueDate
		}
		invoice.IssueDate = issueDate
	}
	if patch.DueDate != nil {
		invoice.DueDate = strings.TrimSpace(*patch.DueDate)
	}
	if patch.FromBusinessName != nil && strings.TrimSpace(*patch.FromBusinessName) != "" {
		invoice.FromBusinessName = strings.TrimSpace(*patch.FromBusinessName)
	}
	if patch.FromEmail != nil {
		invoice.FromEmail = strings.TrimSpace(*patch.FromEmail)
	}
	if patch.FromAddress != nil {
		invoice.FromAddress = *patch.FromAddress
	}
	if patch.FromPhone != nil {
		invoice.FromPhone = strings.TrimSpace(*patch.FromPhone)
	}
	if patch.FromGst != nil {
		invoice.FromGst = strings.TrimSpace(*patch.FromGst)
	}
	if patch.Client != nil {
		invoice.Client = *patch.Client
	}
	if patch.Items != nil {
		invoice.Items = *patch.Items
	}
	if patch.Currency != nil && strings.TrimSpace(*patch.Currency) != "" {
		invoice.Currency = strings.TrimSpace(*patch.Currency)
	}
	if patch.Status != nil {
		status := domain.InvoiceStatus(strings.TrimSpace(*patch.Status))
		if !status.Valid() {
			return domain.ErrInvalidStatus
		}
		invoice.Status = status
	}
	if patch.TaxPercent != nil {
		if *patch.TaxPercent < 0 {
			return domain.ErrInvalidTaxPercent
		}
		invoice.TaxPercent = *patch.TaxPercent
	}
	if patch.LogoURL != nil {
		invoice.LogoURL = *patch.LogoURL
	}
	if patch.StampURL != nil {
		invoice.StampURL = *patch.StampURL
	}
	if patch.SignatureURL != nil {
		invoice.SignatureURL = *patch.SignatureURL
	}
	if patch.SignatureName != nil {
		invoice.SignatureName = *patch.SignatureName
	}
	if patch.SignatureTitle != nil {
		invoice.SignatureTitle = *patch.SignatureTitle
	}
	if patch.Notes != nil {
		invoice.Notes = *patch.Notes
	}
	return nil
}

// generateInvoiceNumber builds the human-facing default number: a
// time-derived prefix plus a random six digit suffix. Collisions are
// handled by the caller's retry loop against the unique index.
func generateInvoiceNumber() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	return fmt.Sprintf("INV-%s-%06d", ts, rand.IntN(900000))
}
