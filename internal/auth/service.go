// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailExists         = errors.New("email already exists")
	ErrUnverified          = errors.New("email not verified")
	ErrVerificationInvalid = errors.New("verification token invalid or expired")
	ErrAlreadyVerified     = errors.New("email already verified")
)

type AccountInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Verified     bool
	PasswordHash string
}

type CreateAccountParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
}

type AccountProvider interface {
	CreateAccount(
		ctx context.Context,
		params CreateAccountParams,
	) (*AccountInfo, error)
	AccountByEmail(ctx context.Context, email string) (*AccountInfo, error)
	AccountByID(ctx context.Context, id string) (*AccountInfo, error)
	StoreVerificationToken(
		ctx context.Context,
		accountID, token string,
		expiresAt time.Time,
	) error
	RedeemVerificationToken(
		ctx context.Context,
		token string,
	) (*AccountInfo, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
}

// MailSender delivers account lifecycle email. Implementations queue and send
// in the background; a delivery failure never fails the request that
// triggered it.
type MailSender interface {
	SendVerification(email, name, token string)
	SendWelcome(email, name string)
	SendSignupNotification(accountEmail string)
}

type Service struct {
	jwt      *JWTManager
	accounts AccountProvider
	mail     MailSender
	cfg      config.JWTConfig
	logger   *slog.Logger
}

func NewService(
	jwt *JWTManager,
	accounts AccountProvider,
	mail MailSender,
	cfg config.JWTConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		jwt:      jwt,
		accounts: accounts,
		mail:     mail,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates an unverified account and emails a verification token.
// No tokens are issued here: login stays closed until the email is verified.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	info, err := s.accounts.CreateAccount(ctx, CreateAccountParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.issueVerification(ctx, info); err != nil {
		return nil, err
	}

	s.mail.SendSignupNotification(info.Email)

	return &RegisterResponse{
		Account: toAccountResponse(info),
		Message: "verification email sent",
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	info, err := s.accounts.AccountByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&info.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	// Only revealed after the password checked out, so an unverified
	// account cannot be probed with guessed passwords.
	if !info.Verified {
		return nil, ErrUnverified
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.accounts.UpdatePassword(ctx, info.ID, newHash)
	}

	pair, err := s.jwt.IssuePair(info.ID, info.Email, info.Role)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &AuthResponse{
		Account: toAccountResponse(info),
		Tokens: TokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    pair.ExpiresIn,
			ExpiresAt:    pair.ExpiresAt,
		},
	}, nil
}

// VerifyEmail redeems a verification token. The underlying update is
// conditional on the token matching and being unexpired, so a token can only
// ever succeed once.
func (s *Service) VerifyEmail(
	ctx context.Context,
	token string,
) (*AccountResponse, error) {
	if token == "" {
		return nil, ErrVerificationInvalid
	}

	info, err := s.accounts.RedeemVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrVerificationInvalid
		}
		return nil, fmt.Errorf("redeem verification token: %w", err)
	}

	s.mail.SendWelcome(info.Email, info.FirstName)

	resp := toAccountResponse(info)
	return &resp, nil
}

// ResendVerification issues a fresh token, invalidating the previous one.
// An unknown email fails with ErrNotFound; the HTTP layer decides how much
// of that to reveal.
func (s *Service) ResendVerification(
	ctx context.Context,
	email string,
) error {
	info, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("resend verification: %w", core.ErrNotFound)
		}
		return fmt.Errorf("get account: %w", err)
	}

	if info.Verified {
		return ErrAlreadyVerified
	}

	return s.issueVerification(ctx, info)
}

// Refresh mints a new access token against a valid refresh token. The
// refresh token itself is untouched; once it expires the client logs in
// again. Role and email are re-read so a changed role lands in the new
// access token.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*RenewResponse, error) {
	accountID, err := s.jwt.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	info, err := s.accounts.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	accessToken, expiresAt, err := s.jwt.RenewAccessToken(
		info.ID,
		info.Email,
		info.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("renew access token: %w", err)
	}

	return &RenewResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.AccessTokenExpire / time.Second),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) issueVerification(
	ctx context.Context,
	info *AccountInfo,
) error {
	token, err := core.GenerateVerificationToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.cfg.VerifyTokenExpire)
	if err := s.accounts.StoreVerificationToken(ctx, info.ID, token, expiresAt); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	s.mail.SendVerification(info.Email, info.FirstName, token)

	s.logger.InfoContext(ctx, "verification token issued",
		slog.String("account_id", info.ID))

	return nil
}
