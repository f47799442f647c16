// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

type fakeAccount struct {
	info         AccountInfo
	token        string
	tokenExpires time.Time
}

type fakeAccounts struct {
	byEmail map[string]*fakeAccount
	nextID  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*fakeAccount{}}
}

func (f *fakeAccounts) CreateAccount(
	_ context.Context,
	params CreateAccountParams,
) (*AccountInfo, error) {
	if _, ok := f.byEmail[params.Email]; ok {
		return nil, core.ErrDuplicateKey
	}

	f.nextID++
	acct := &fakeAccount{info: AccountInfo{
		ID:           fmt.Sprintf("acct-%d", f.nextID),
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Role:         "user",
		PasswordHash: params.PasswordHash,
	}}
	f.byEmail[params.Email] = acct

	info := acct.info
	return &info, nil
}

func (f *fakeAccounts) AccountByEmail(
	_ context.Context,
	email string,
) (*AccountInfo, error) {
	acct, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	info := acct.info
	return &info, nil
}

func (f *fakeAccounts) AccountByID(
	_ context.Context,
	id string,
) (*AccountInfo, error) {
	for _, acct := range f.byEmail {
		if acct.info.ID == id {
			info := acct.info
			return &info, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeAccounts) StoreVerificationToken(
	_ context.Context,
	accountID, token string,
	expiresAt time.Time,
) error {
	for _, acct := range f.byEmail {
		if acct.info.ID == accountID {
			acct.token = token
			acct.tokenExpires = expiresAt
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeAccounts) RedeemVerificationToken(
	_ context.Context,
	token string,
) (*AccountInfo, error) {
	for _, acct := range f.byEmail {
		if acct.token == token && time.Now().Before(acct.tokenExpires) {
			acct.token = ""
			acct.info.Verified = true
			info := acct.info
			return &info, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeAccounts) UpdatePassword(
	_ context.Context,
	accountID, passwordHash string,
) error {
	for _, acct := range f.byEmail {
		if acct.info.ID == accountID {
			acct.info.PasswordHash = passwordHash
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeMail struct {
	verifications []string
	welcomes      []string
	notifications []string
}

func (f *fakeMail) SendVerification(email, _, _ string) {
	f.verifications = append(f.verifications, email)
}

func (f *fakeMail) SendWelcome(email, _ string) {
	f.welcomes = append(f.welcomes, email)
}

func (f *fakeMail) SendSignupNotification(accountEmail string) {
	f.notifications = append(f.notifications, accountEmail)
}

func newTestService(t *testing.T) (*Service, *fakeAccounts, *fakeMail) {
	t.Helper()

	m := newTestManager(t, 15*time.Minute)
	accounts := newFakeAccounts()
	mail := &fakeMail{}

	svc := NewService(m, accounts, mail, config.JWTConfig{
		AccessTokenExpire: 15 * time.Minute,
		VerifyTokenExpire: time.Hour,
	}, slog.Default())

	return svc, accounts, mail
}

func register(t *testing.T, svc *Service) *RegisterResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "jo@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Jo",
		LastName:  "Birch",
		Phone:     "555-0100",
		Address:   "1 Main St",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	svc, accounts, mail := newTestService(t)

	resp := register(t, svc)
	assert.False(t, resp.Account.Verified)
	assert.Equal(t, []string{"jo@example.com"}, mail.verifications)
	assert.Equal(t, []string{"jo@example.com"}, mail.notifications)
	assert.NotEmpty(t, accounts.byEmail["jo@example.com"].token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "jo@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Jo",
		LastName:  "Birch",
		Phone:     "555-0100",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginGatedUntilVerified(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc)

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, ErrUnverified)

	token := accounts.byEmail["jo@example.com"].token
	_, err = svc.VerifyEmail(ctx, token)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.True(t, resp.Account.Verified)
}

func TestLoginErrorsAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc)

	_, unknownErr := svc.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	_, wrongErr := svc.Login(ctx, LoginRequest{
		Email:    "jo@example.com",
		Password: "not the password",
	})

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestVerificationTokenSingleUse(t *testing.T) {
	svc, accounts, mail := newTestService(t)
	ctx := context.Background()

	register(t, svc)
	token := accounts.byEmail["jo@example.com"].token

	acct, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, acct.Verified)
	assert.Equal(t, []string{"jo@example.com"}, mail.welcomes)

	_, err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrVerificationInvalid)
}

func TestVerifyEmptyToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrVerificationInvalid)
}

func TestResendReplacesToken(t *testing.T) {
	svc, accounts, mail := newTestService(t)
	ctx := context.Background()

	register(t, svc)
	oldToken := accounts.byEmail["jo@example.com"].token

	require.NoError(t, svc.ResendVerification(ctx, "jo@example.com"))
	newToken := accounts.byEmail["jo@example.com"].token

	assert.NotEqual(t, oldToken, newToken)
	assert.Len(t, mail.verifications, 2)

	// The replaced token no longer verifies anything.
	_, err := svc.VerifyEmail(ctx, oldToken)
	assert.ErrorIs(t, err, ErrVerificationInvalid)

	_, err = svc.VerifyEmail(ctx, newToken)
	assert.NoError(t, err)
}

func TestResendAlreadyVerified(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc)
	_, err := svc.VerifyEmail(ctx, accounts.byEmail["jo@example.com"].token)
	require.NoError(t, err)

	err = svc.ResendVerification(ctx, "jo@example.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestResendUnknownEmail(t *testing.T) {
	svc, _, mail := newTestService(t)

	err := svc.ResendVerification(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, mail.verifications)
}

func TestRefreshMintsAccessTokenOnly(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc)
	_, err := svc.VerifyEmail(ctx, accounts.byEmail["jo@example.com"].token)
	require.NoError(t, err)

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	renewed, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)

	claims, err := svc.jwt.VerifyAccessToken(ctx, renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.Account.ID, claims.AccountID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc)
	_, err := svc.VerifyEmail(ctx, accounts.byEmail["jo@example.com"].token)
	require.NoError(t, err)

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "jo@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
