// AngelaMos | 2026
// handler.go

package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/commerce-backend/internal/core"
	"github.com/carterperez-dev/commerce-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{orderID}", h.Get)
		r.Post("/{orderID}/pay", h.Pay)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	o, err := h.service.CreateOrder(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			core.JSONError(w, core.NewAppError(
				ErrCartEmpty,
				"cart is empty",
				http.StatusUnprocessableEntity,
				"CART_EMPTY",
			))
			return
		}
		if errors.Is(err, ErrMissingContactInfo) {
			core.JSONError(w, core.NewAppError(
				ErrMissingContactInfo,
				"phone number and address are required before checkout",
				http.StatusUnprocessableEntity,
				"MISSING_CONTACT_INFO",
			))
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "product")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	orders, err := h.service.ListOrders(r.Context(), accountID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	o, err := h.service.GetOrder(r.Context(), accountID, orderID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "order")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	orderID := chi.URLParam(r, "orderID")

	o, err := h.service.MarkPaid(r.Context(), accountID, orderID)
	if err != nil {
		if errors.Is(err, ErrMissingContactInfo) {
			core.JSONError(w, core.NewAppError(
				ErrMissingContactInfo,
				"account contact details are required before payment",
				http.StatusUnprocessableEntity,
				"MISSING_CONTACT_INFO",
			))
			return
		}
		if errors.Is(err, ErrAlreadyPaid) {
			core.JSONError(w, core.NewAppError(
				ErrAlreadyPaid,
				"order is already paid",
				http.StatusConflict,
				"ALREADY_PAID",
			))
			return
		}
		if errors.Is(err, ErrOrderCancelled) {
			core.JSONError(w, core.NewAppError(
				ErrOrderCancelled,
				"order was cancelled",
				http.StatusConflict,
				"ORDER_CANCELLED",
			))
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "order")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	params := ListOrdersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Status:   r.URL.Query().Get("status"),
	}

	orders, total, err := h.service.ListAll(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToOrderResponseList(orders),
		params.Page,
		params.PageSize,
		total,
	)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
