// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-backend/internal/auth"
	"github.com/carterperez-dev/commerce-backend/internal/core"
	"github.com/carterperez-dev/commerce-backend/internal/order"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

var _ auth.AccountProvider = (*Service)(nil)

func (s *Service) CreateAccount(
	ctx context.Context,
	params auth.CreateAccountParams,
) (*auth.AccountInfo, error) {
	acct := &Account{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		Address:      params.Address,
		Role:         RoleUser,
		Verified:     false,
	}

	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account created",
		slog.String("account_id", acct.ID))

	return toAccountInfo(acct), nil
}

func (s *Service) AccountByEmail(
	ctx context.Context,
	email string,
) (*auth.AccountInfo, error) {
	acct, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toAccountInfo(acct), nil
}

func (s *Service) AccountByID(
	ctx context.Context,
	id string,
) (*auth.AccountInfo, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAccountInfo(acct), nil
}

func (s *Service) StoreVerificationToken(
	ctx context.Context,
	accountID, token string,
	expiresAt time.Time,
) error {
	return s.repo.SetVerificationToken(ctx, accountID, token, expiresAt)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	accountID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, accountID, passwordHash)
}

func (s *Service) RedeemVerificationToken(
	ctx context.Context,
	token string,
) (*auth.AccountInfo, error) {
	acct, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account verified",
		slog.String("account_id", acct.ID))

	return toAccountInfo(acct), nil
}

func toAccountInfo(a *Account) *auth.AccountInfo {
	return &auth.AccountInfo{
		ID:           a.ID,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Role:         a.Role,
		Verified:     a.Verified,
		PasswordHash: a.PasswordHash,
	}
}

var _ order.ContactProvider = (*Service)(nil)

// Contact exposes the shipping details checkout needs.
func (s *Service) Contact(
	ctx context.Context,
	accountID string,
) (*order.ContactInfo, error) {
	acct, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &order.ContactInfo{
		Email:   acct.Email,
		Name:    acct.FullName(),
		Phone:   acct.Phone,
		Address: acct.Address,
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		acct.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		acct.LastName = *req.LastName
	}
	if req.Phone != nil {
		acct.Phone = *req.Phone
	}
	if req.Address != nil {
		acct.Address = *req.Address
	}

	if err := s.repo.UpdateProfile(ctx, acct); err != nil {
		return nil, err
	}

	return acct, nil
}

// DeleteByEmail removes an account. Non-admin callers may only delete
// themselves, matched on the lowercased email.
func (s *Service) DeleteByEmail(
	ctx context.Context,
	callerID, callerRole, email string,
) error {
	if callerRole != RoleAdmin {
		acct, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if acct.ID != callerID {
			return fmt.Errorf("delete account: %w", core.ErrForbidden)
		}
	}

	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.String("caller_id", callerID))

	return nil
}

func (s *Service) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}
