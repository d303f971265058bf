// Package storetest provides an in-memory Store for unit tests.
package storetest

import (
	"context"
	"sync"

	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/store"
	"github.com/shopspring/decimal"
)

// Mem keeps users, accounts and charges in maps. Reads hand out copies so
// callers only change stored state through Save calls, matching how the
// gorm store behaves.
type Mem struct {
	mu       sync.Mutex
	users    map[uint]models.User
	accounts map[uint]models.Account // keyed by user id
	charges  map[uint]models.Charge

	nextUserID    uint
	nextAccountID uint
	nextChargeID  uint
}

func New() *Mem {
	return &Mem{
		users:    make(map[uint]models.User),
		accounts: make(map[uint]models.Account),
		charges:  make(map[uint]models.Charge),
	}
}

var _ store.Store = (*Mem)(nil)

// AddUser seeds a user with an account holding the given balance.
func (m *Mem) AddUser(name, cpf, email, balance string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUserID++
	user := models.User{Name: name, CPF: cpf, Email: email}
	user.ID = m.nextUserID
	m.users[user.ID] = user

	m.nextAccountID++
	account := models.Account{UserID: user.ID, Balance: decimal.RequireFromString(balance)}
	account.ID = m.nextAccountID
	m.accounts[user.ID] = account

	return &user
}

// AddCharge seeds a charge directly in the given state.
func (m *Mem) AddCharge(originID, destinationID uint, amount string, status models.ChargeStatus, method models.PaymentMethod) *models.Charge {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextChargeID++
	charge := models.Charge{
		OriginID:      originID,
		DestinationID: destinationID,
		Amount:        decimal.RequireFromString(amount),
		Status:        status,
		PaymentMethod: method,
	}
	charge.ID = m.nextChargeID
	m.charges[charge.ID] = charge
	return &charge
}

// Balance reports the stored balance for a user.
func (m *Mem) Balance(userID uint) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userID].Balance
}

// Charge reports the stored state of a charge.
func (m *Mem) Charge(id uint) models.Charge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.charges[id]
}

func (m *Mem) UserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &user, nil
}

func (m *Mem) UserByCPF(ctx context.Context, cpf string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.CPF == cpf {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *Mem) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *Mem) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		m.nextUserID++
		user.ID = m.nextUserID
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Mem) AccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	return &account, nil
}

func (m *Mem) SaveAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		m.nextAccountID++
		account.ID = m.nextAccountID
	}
	m.accounts[account.UserID] = *account
	return nil
}

func (m *Mem) ChargeByID(ctx context.Context, id uint) (*models.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.charges[id]
	if !ok {
		return nil, apperr.NotFound("charge not found")
	}
	return &charge, nil
}

func (m *Mem) ChargesByOrigin(ctx context.Context, originID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Charge
	for _, charge := range m.charges {
		if charge.OriginID == originID && (status == nil || charge.Status == *status) {
			out = append(out, charge)
		}
	}
	return out, nil
}

func (m *Mem) ChargesByDestination(ctx context.Context, destinationID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Charge
	for _, charge := range m.charges {
		if charge.DestinationID == destinationID && (status == nil || charge.Status == *status) {
			out = append(out, charge)
		}
	}
	return out, nil
}

func (m *Mem) SaveCharge(ctx context.Context, charge *models.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if charge.ID == 0 {
		m.nextChargeID++
		charge.ID = m.nextChargeID
	}
	m.charges[charge.ID] = *charge
	return nil
}

// Transact runs fn against the same Mem. The engine only mutates after all
// checks pass, so rollback is never observable in these tests.
func (m *Mem) Transact(ctx context.Context, fn func(store.Store) error) error {
	return fn(m)
}
