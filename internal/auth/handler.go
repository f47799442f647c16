// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/commerce-backend/internal/core"
	"github.com/carterperez-dev/commerce-backend/internal/middleware"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

type Handler struct {
	service      *Service
	validator    *validator.Validate
	secureCookie bool
}

func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{
		service:      service,
		validator:    validator.New(validator.WithRequiredStructEnabled()),
		secureCookie: secureCookie,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/verify", h.VerifyEmail)
		r.Post("/resend-verification", h.ResendVerification)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
			return
		}
		if errors.Is(err, ErrUnverified) {
			core.JSONError(w, core.NewAppError(
				ErrUnverified,
				"email address is not verified",
				http.StatusForbidden,
				"EMAIL_UNVERIFIED",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.setAuthCookies(w, resp.Tokens)
	core.OK(w, resp)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	acct, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrVerificationInvalid) {
			core.JSONError(w, core.NewAppError(
				ErrVerificationInvalid,
				"verification token is invalid or expired",
				http.StatusBadRequest,
				"VERIFICATION_INVALID",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, acct)
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrAlreadyVerified) {
			core.Conflict(w, "email address is already verified")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "verification email sent"})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.extractRefreshToken(r)
	if refreshToken == "" {
		core.JSONError(w, core.TokenInvalidError())
		return
	}

	resp, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			core.JSONError(w, core.TokenExpiredError())
			return
		}
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, core.TokenInvalidError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.setCookie(w, accessCookieName, resp.AccessToken, resp.ExpiresAt)
	core.OK(w, resp)
}

// Logout clears the token cookies. Tokens are self-contained so there is
// nothing to revoke server-side; clients drop what they hold.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, accessCookieName)
	h.clearCookie(w, refreshCookieName)

	core.NoContent(w)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, MeResponse{
		ID:    claims.AccountID,
		Email: claims.Email,
		Role:  claims.Role,
	})
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, tokens TokenResponse) {
	h.setCookie(w, accessCookieName, tokens.AccessToken, tokens.ExpiresAt)
	h.setCookie(
		w,
		refreshCookieName,
		tokens.RefreshToken,
		time.Now().Add(7*24*time.Hour),
	)
}

func (h *Handler) setCookie(
	w http.ResponseWriter,
	name, value string,
	expires time.Time,
) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) extractRefreshToken(r *http.Request) string {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil &&
		req.RefreshToken != "" {
		return req.RefreshToken
	}

	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
