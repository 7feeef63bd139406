package service

import (
	"context"
	"strings"
	"time"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/ownerctx"
	"github.com/billcraft/billcraft/internal/profile/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   config.Config
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		cfg:   p.Cfg,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertProfileRequest) (domain.BusinessProfile, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.BusinessProfile{}, domain.ErrNoOwner
	}

	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		name = s.cfg.DefaultBusinessName
	}

	taxPercent := s.cfg.DefaultTaxPercent
	if req.DefaultTaxPercent != nil {
		if *req.DefaultTaxPercent < 0 {
			return domain.BusinessProfile{}, domain.ErrInvalidTaxPercent
		}
		taxPercent = *req.DefaultTaxPercent
	}

	now := time.Now().UTC()

	existing, err := s.repo.FindByOwner(ctx, s.db, owner)
	if err != nil {
		return domain.BusinessProfile{}, err
	}

	profile := domain.BusinessProfile{
		ID:                  s.genID.Generate(),
		Owner:               owner,
		BusinessName:        name,
		Email:               strings.TrimSpace(req.Email),
		Address:             req.Address,
		Phone:               strings.TrimSpace(req.Phone),
		Gst:                 strings.TrimSpace(req.Gst),
		LogoURL:             req.LogoURL,
		StampURL:            req.StampURL,
		SignatureURL:        req.SignatureURL,
		SignatureOwnerName:  req.SignatureOwnerName,
		SignatureOwnerTitle: req.SignatureOwnerTitle,
		DefaultTaxPercent:   taxPercent,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if existing != nil {
		// Replace fields, keep identity and creation time.
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if err := s.repo.Save(ctx, s.db, &profile); err != nil {
			return domain.BusinessProfile{}, err
		}
		return profile, nil
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		return domain.BusinessProfile{}, err
	}
	return profile, nil
}

func (s *Service) GetMine(ctx context.Context) (domain.BusinessProfile, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.BusinessProfile{}, domain.ErrNoOwner
	}

	profile, err := s.repo.FindByOwner(ctx, s.db, owner)
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	if profile == nil {
		return domain.BusinessProfile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Update(ctx context.Context, id string, patch domain.ProfilePatch) (domain.BusinessProfile, error) {
	owner, ok := ownerctx.OwnerFromContext(ctx)
	if !ok {
		return domain.BusinessProfile{}, domain.ErrNoOwner
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.BusinessProfile{}, domain.ErrNotFound
	}

	profile, err := s.repo.FindByID(ctx, s.db, owner, parsed)
	if err != nil {
		return domain.BusinessProfile{}, err
	}
	if profile == nil {
		// A foreign owner's profile looks exactly like a missing one.
		return domain.BusinessProfile{}, domain.ErrNotFound
	}

	if patch.BusinessName != nil && strings.TrimSpace(*patch.BusinessName) != "" {
		profile.BusinessName = strings.TrimSpace(*patch.BusinessName)
	}
	if patch.Email != nil {
		profile.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Address != nil {
		profile.Address = *patch.Address
	}
	if patch.Phone != nil {
		profile.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Gst != nil {
		profile.Gst = strings.TrimSpace(*patch.Gst)
	}
	if patch.LogoURL != nil {
		profile.LogoURL = *patch.LogoURL
	}
	if patch.StampURL != nil {
		profile.StampURL = *patch.StampURL
	}
	if patch.SignatureURL != nil {
		profile.SignatureURL = *patch.SignatureURL
	}
	if patch.SignatureOwnerName != nil {
		profile.SignatureOwnerName = *patch.SignatureOwnerName
	}
	if patch.SignatureOwnerTitle != nil {
		profile.SignatureOwnerTitle = *patch.SignatureOwnerTitle
	}
	if patch.DefaultTaxPercent != nil {
		if *patch.DefaultTaxPercent < 0 {
			return domain.BusinessProfile{}, domain.ErrInvalidTaxPercent
		}
		profile.DefaultTaxPercent = *patch.DefaultTaxPercent
	}

	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, s.db, profile); err != nil {
		return domain.BusinessProfile{}, err
	}
	return *profile, nil
}
