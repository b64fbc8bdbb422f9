package service

import (
	"context"
	"fmt"

	"github.com/proposalhub/proposalhub-api/internal/auth"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/mapper"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"go.uber.org/zap"
)

// AccountService manages the tenant's billing account. Reads are open
// to any member; writes require the owner role.
type AccountService struct {
	accountRepo *repository.AccountRepository
	resolver    *auth.Resolver
	logger      *zap.Logger
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	resolver *auth.Resolver,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

func (s *AccountService) GetMine(ctx context.Context) (*domain.AccountDTO, error) {
	tenant := auth.MustFromContext(ctx)

	account, err := s.accountRepo.GetByOrganization(ctx, tenant.OrganizationID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

func (s *AccountService) Update(ctx context.Context, req *domain.UpdateAccountRequest) (*domain.AccountDTO, error) {
	tenant := auth.MustFromContext(ctx)

	if err := s.resolver.RequireOrganizationRole(ctx, tenant.ContactID, tenant.OrganizationID, domain.RoleOwner); err != nil {
		return nil, ErrForbidden
	}

	account, err := s.accountRepo.GetByOrganization(ctx, tenant.OrganizationID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.SubscriptionTier = req.SubscriptionTier
	account.BillingContactID = req.BillingContactID

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.logger.Info("account updated",
		zap.String("organization_id", tenant.OrganizationID.String()),
		zap.String("subscription_tier", string(account.SubscriptionTier)),
	)

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}
