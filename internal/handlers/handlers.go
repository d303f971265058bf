package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/auth"
	"github.com/luciano-mota/payment-gateway/internal/httputil"
	"github.com/luciano-mota/payment-gateway/internal/middleware"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/payment"
	"github.com/luciano-mota/payment-gateway/internal/store"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	CPF      string `json:"cpf" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateChargeRequest struct {
	DestinationCPF string          `json:"destinationCpf" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description" validate:"max=255"`
}

type CardPaymentRequest struct {
	CardNumber string `json:"cardNumber" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ChargeResponse struct {
	ID            uint            `json:"id"`
	OriginID      uint            `json:"originId"`
	DestinationID uint            `json:"destinationId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func toChargeResponse(c models.Charge) ChargeResponse {
	return ChargeResponse{
		ID:            c.ID,
		OriginID:      c.OriginID,
		DestinationID: c.DestinationID,
		Amount:        c.Amount,
		Description:   c.Description,
		Status:        string(c.Status),
		PaymentMethod: string(c.PaymentMethod),
		CreatedAt:     c.CreatedAt,
	}
}

type Handler struct {
	engine   payment.Engine
	auth     *auth.Service
	store    store.Store
	validate *validator.Validate
}

func New(engine payment.Engine, authSvc *auth.Service, st store.Store) *Handler {
	return &Handler{
		engine:   engine,
		auth:     authSvc,
		store:    st,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
	}
	return userID, ok
}

func chargeID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid charge id")
		return 0, false
	}
	return uint(id), true
}

// statusFilter parses the optional ?status= query param, any casing.
func statusFilter(w http.ResponseWriter, r *http.Request) (*models.ChargeStatus, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, true
	}
	status, err := models.ParseChargeStatus(raw)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid status filter")
		return nil, false
	}
	return &status, true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), req.Name, req.CPF, req.Email, req.Password)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"id": user.ID})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if apperr.IsKind(err, apperr.KindInvalidArgument) {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.store.UserByID(r.Context(), userID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	account, err := h.store.AccountByUserID(r.Context(), userID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id":      user.ID,
		"name":    user.Name,
		"cpf":     user.CPF,
		"email":   user.Email,
		"balance": account.Balance,
	})
}

func (h *Handler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateChargeRequest
	if !h.decode(w, r, &req) {
		return
	}
	charge, err := h.engine.CreateCharge(r.Context(), userID, req.DestinationCPF, req.Amount, req.Description)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"id": charge.ID})
}

func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	h.listCharges(w, r, h.engine.ListSent)
}

func (h *Handler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.listCharges(w, r, h.engine.ListReceived)
}

func (h *Handler) listCharges(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID uint, status *models.ChargeStatus) ([]models.Charge, error)) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}
	charges, err := list(r.Context(), userID, status)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if len(charges) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out := make([]ChargeResponse, 0, len(charges))
	for _, c := range charges {
		out = append(out, toChargeResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) PayByBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := chargeID(w, r)
	if !ok {
		return
	}
	charge, err := h.engine.PayByBalance(r.Context(), userID, id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": charge.Status})
}

func (h *Handler) PayByCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := chargeID(w, r)
	if !ok {
		return
	}
	var req CardPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	paid, err := h.engine.PayByCard(r.Context(), userID, id, payment.Card{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	})
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if !paid {
		httputil.WriteJSON(w, http.StatusPaymentRequired, map[string]any{"paid": false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"paid": true})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req DepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	deposited, err := h.engine.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	if !deposited {
		httputil.WriteJSON(w, http.StatusPaymentRequired, map[string]any{"deposited": false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deposited": true})
}

func (h *Handler) CancelCharge(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := chargeID(w, r)
	if !ok {
		return
	}
	charge, err := h.engine.CancelCharge(r.Context(), userID, id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": charge.Status})
}
