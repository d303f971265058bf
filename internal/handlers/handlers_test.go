package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/luciano-mota/payment-gateway/internal/auth"
	"github.com/luciano-mota/payment-gateway/internal/logger"
	"github.com/luciano-mota/payment-gateway/internal/middleware"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/payment"
	"github.com/luciano-mota/payment-gateway/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuthorizer struct{ approve bool }

func (s *stubAuthorizer) Authorize(ctx context.Context) bool { return s.approve }

type fixture struct {
	router      *chi.Mux
	mem         *storetest.Mem
	origin      *models.User
	destination *models.User
	// the request is attributed to this user id
	asUser uint
}

func newFixture(t *testing.T, approve bool) *fixture {
	t.Helper()
	logger.Log = zap.NewNop()

	mem := storetest.New()
	engine := payment.NewEngine(mem, &stubAuthorizer{approve: approve}, zap.NewNop())
	authSvc := auth.NewService(mem, "test-secret", zap.NewNop())
	h := New(engine, authSvc, mem)

	f := &fixture{mem: mem}
	f.origin = mem.AddUser("Alice", "52998224725", "alice@test.com", "5000.00")
	f.destination = mem.AddUser("Bruno", "15350946056", "bruno@test.com", "10000.00")
	f.asUser = f.origin.ID

	r := chi.NewRouter()
	// stand-in for the JWT middleware: attribute requests to f.asUser
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), f.asUser)))
		})
	})
	r.Post("/charges", h.CreateCharge)
	r.Get("/charges/sent", h.ListSent)
	r.Get("/charges/received", h.ListReceived)
	r.Post("/charges/deposit", h.Deposit)
	r.Post("/charges/{id}/pay/balance", h.PayByBalance)
	r.Post("/charges/{id}/pay/card", h.PayByCard)
	r.Post("/charges/{id}/cancel", h.CancelCharge)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateChargeHandler(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/charges",
		`{"destinationCpf":"15350946056","amount":100.00,"description":"Test charge"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp["id"])
}

func TestCreateChargeHandlerBadBody(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/charges", `{"amount":100.00}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListChargesHandler(t *testing.T) {
	f := newFixture(t, true)

	t.Run("empty list answers 204", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/charges/sent", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	f.mem.AddCharge(f.origin.ID, f.destination.ID, "10.00", models.StatusPending, models.MethodNone)

	t.Run("lists sent charges", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/charges/sent", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var charges []ChargeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &charges))
		assert.Len(t, charges, 1)
		assert.Equal(t, "PENDING", charges[0].Status)
	})

	t.Run("lower-case status filter accepted", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/charges/sent?status=pending", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status filter rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/charges/sent?status=bogus", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPayByBalanceHandler(t *testing.T) {
	f := newFixture(t, true)
	charge := f.mem.AddCharge(f.origin.ID, f.destination.ID, "100.00", models.StatusPending, models.MethodNone)
	f.asUser = f.destination.ID

	rec := f.do(t, http.MethodPost, "/charges/1/pay/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusPaid, f.mem.Charge(charge.ID).Status)
}

func TestPayByCardHandlerDeclined(t *testing.T) {
	f := newFixture(t, false)
	charge := f.mem.AddCharge(f.origin.ID, f.destination.ID, "100.00", models.StatusPending, models.MethodNone)
	f.asUser = f.destination.ID

	rec := f.do(t, http.MethodPost, "/charges/1/pay/card",
		`{"cardNumber":"4111111111111111","expiry":"12/30","cvv":"123"}`)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, models.StatusPending, f.mem.Charge(charge.ID).Status)
}

func TestDepositHandlerDeclined(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/charges/deposit", `{"amount":250.00}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestCancelChargeHandlerConflict(t *testing.T) {
	f := newFixture(t, true)
	outsider := f.mem.AddUser("Carla", "11144477735", "carla@test.com", "0.00")
	f.mem.AddCharge(f.origin.ID, f.destination.ID, "100.00", models.StatusPending, models.MethodNone)
	f.asUser = outsider.ID

	rec := f.do(t, http.MethodPost, "/charges/1/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvalidChargeID(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/charges/abc/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
