package store

import (
	"context"

	"github.com/luciano-mota/payment-gateway/internal/models"
)

// Store is the persistence contract the payment engine consumes. Every
// method participates in the transaction of the Store it was called on:
// the root Store runs each call standalone, while the Store handed to a
// Transact callback is bound to that transaction.
type Store interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByCPF(ctx context.Context, cpf string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	AccountByUserID(ctx context.Context, userID uint) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error

	ChargeByID(ctx context.Context, id uint) (*models.Charge, error)
	ChargesByOrigin(ctx context.Context, originID uint, status *models.ChargeStatus) ([]models.Charge, error)
	ChargesByDestination(ctx context.Context, destinationID uint, status *models.ChargeStatus) ([]models.Charge, error)
	SaveCharge(ctx context.Context, charge *models.Charge) error

	// Transact runs fn inside one all-or-nothing transaction. The Store
	// passed to fn locks charge and account rows it reads, so concurrent
	// settlements of the same charge serialize instead of both committing.
	Transact(ctx context.Context, fn func(Store) error) error
}
