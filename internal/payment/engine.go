// Package payment implements the charge lifecycle: creation, settlement by
// balance or card, deposits, and cancellation with refunds. Every mutating
// operation runs in a single store transaction; the external authorizer is
// consulted before any money moves, so a denial never needs a rollback.
package payment

import (
	"context"

	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/authorizer"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Card carries the card data handed to the authorizer call site. It is
// accepted and discarded: nothing card-shaped is validated or persisted.
type Card struct {
	Number string
	Expiry string
	CVV    string
}

type Engine interface {
	CreateCharge(ctx context.Context, originID uint, destinationCPF string, amount decimal.Decimal, description string) (*models.Charge, error)
	ListSent(ctx context.Context, originID uint, status *models.ChargeStatus) ([]models.Charge, error)
	ListReceived(ctx context.Context, destinationID uint, status *models.ChargeStatus) ([]models.Charge, error)
	PayByBalance(ctx context.Context, payerID, chargeID uint) (*models.Charge, error)
	PayByCard(ctx context.Context, payerID, chargeID uint, card Card) (bool, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (bool, error)
	CancelCharge(ctx context.Context, userID, chargeID uint) (*models.Charge, error)
}

type engine struct {
	store  store.Store
	auth   authorizer.Authorizer
	logger *zap.Logger
}

func NewEngine(st store.Store, auth authorizer.Authorizer, logger *zap.Logger) Engine {
	return &engine{store: st, auth: auth, logger: logger}
}

// CreateCharge opens a PENDING charge from origin against the user owning
// destinationCPF. No payment method is set until settlement.
func (e *engine) CreateCharge(ctx context.Context, originID uint, destinationCPF string, amount decimal.Decimal, description string) (*models.Charge, error) {
	if !amount.IsPositive() {
		return nil, apperr.InvalidArgument("amount must be positive")
	}

	var charge *models.Charge
	err := e.store.Transact(ctx, func(tx store.Store) error {
		origin, err := tx.UserByID(ctx, originID)
		if err != nil {
			return err
		}
		destination, err := tx.UserByCPF(ctx, destinationCPF)
		if err != nil {
			return err
		}
		if origin.ID == destination.ID {
			return apperr.InvalidArgument("origin and destination cannot be the same")
		}

		charge = &models.Charge{
			OriginID:      origin.ID,
			DestinationID: destination.ID,
			Amount:        amount,
			Description:   description,
			Status:        models.StatusPending,
			PaymentMethod: models.MethodNone,
		}
		return tx.SaveCharge(ctx, charge)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("charge created",
		zap.Uint("charge_id", charge.ID),
		zap.Uint("origin_id", charge.OriginID),
		zap.Uint("destination_id", charge.DestinationID),
		zap.String("amount", charge.Amount.String()))
	return charge, nil
}

func (e *engine) ListSent(ctx context.Context, originID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	if _, err := e.store.UserByID(ctx, originID); err != nil {
		return nil, err
	}
	return e.store.ChargesByOrigin(ctx, originID, status)
}

func (e *engine) ListReceived(ctx context.Context, destinationID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	if _, err := e.store.UserByID(ctx, destinationID); err != nil {
		return nil, err
	}
	return e.store.ChargesByDestination(ctx, destinationID, status)
}

// PayByBalance settles a PENDING charge out of the payer's balance. The
// payer must be the charge's destination and must cover the full amount.
func (e *engine) PayByBalance(ctx context.Context, payerID, chargeID uint) (*models.Charge, error) {
	var charge *models.Charge
	err := e.store.Transact(ctx, func(tx store.Store) error {
		var err error
		charge, err = tx.ChargeByID(ctx, chargeID)
		if err != nil {
			return err
		}
		if charge.Status != models.StatusPending {
			return apperr.Conflict("charge is not pending")
		}
		if charge.DestinationID != payerID {
			return apperr.Conflict("invalid paying user")
		}

		payerAccount, err := tx.AccountByUserID(ctx, charge.DestinationID)
		if err != nil {
			return err
		}
		if payerAccount.Balance.LessThan(charge.Amount) {
			return apperr.InvalidArgument("insufficient balance")
		}
		receiverAccount, err := tx.AccountByUserID(ctx, charge.OriginID)
		if err != nil {
			return err
		}

		payerAccount.Balance = payerAccount.Balance.Sub(charge.Amount)
		receiverAccount.Balance = receiverAccount.Balance.Add(charge.Amount)
		charge.Status = models.StatusPaid
		charge.PaymentMethod = models.MethodBalance

		if err := tx.SaveAccount(ctx, payerAccount); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, receiverAccount); err != nil {
			return err
		}
		return tx.SaveCharge(ctx, charge)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("charge paid by balance", zap.Uint("charge_id", charge.ID))
	return charge, nil
}

// PayByCard settles a PENDING charge through the external authorizer. A
// denial is an ordinary declined outcome, not an error, and leaves every
// row untouched. The payer's own balance never moves on a card settlement;
// funds come from the card network.
func (e *engine) PayByCard(ctx context.Context, payerID, chargeID uint, card Card) (bool, error) {
	if !e.auth.Authorize(ctx) {
		e.logger.Info("card payment declined by authorizer", zap.Uint("charge_id", chargeID))
		return false, nil
	}

	err := e.store.Transact(ctx, func(tx store.Store) error {
		charge, err := tx.ChargeByID(ctx, chargeID)
		if err != nil {
			return err
		}
		if charge.Status != models.StatusPending {
			return apperr.Conflict("charge is not pending")
		}
		if charge.DestinationID != payerID {
			return apperr.Conflict("invalid paying user")
		}

		receiverAccount, err := tx.AccountByUserID(ctx, charge.OriginID)
		if err != nil {
			return err
		}
		receiverAccount.Balance = receiverAccount.Balance.Add(charge.Amount)
		charge.Status = models.StatusPaid
		charge.PaymentMethod = models.MethodCard

		if err := tx.SaveAccount(ctx, receiverAccount); err != nil {
			return err
		}
		return tx.SaveCharge(ctx, charge)
	})
	if err != nil {
		return false, err
	}

	e.logger.Info("charge paid by card", zap.Uint("charge_id", chargeID))
	return true, nil
}

// Deposit credits the user's own account after authorizer approval. A
// denial is a declined outcome, not an error.
func (e *engine) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, apperr.InvalidArgument("amount must be positive")
	}

	if !e.auth.Authorize(ctx) {
		e.logger.Info("deposit declined by authorizer", zap.Uint("user_id", userID))
		return false, nil
	}

	err := e.store.Transact(ctx, func(tx store.Store) error {
		if _, err := tx.UserByID(ctx, userID); err != nil {
			return err
		}
		account, err := tx.AccountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(amount)
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		return false, err
	}

	e.logger.Info("deposit applied",
		zap.Uint("user_id", userID), zap.String("amount", amount.String()))
	return true, nil
}

// CancelCharge cancels a charge on behalf of either party. A PENDING charge
// just flips status; a PAID one refunds according to how it was settled.
// Cancelling an already CANCELED charge is a no-op.
func (e *engine) CancelCharge(ctx context.Context, userID, chargeID uint) (*models.Charge, error) {
	var charge *models.Charge
	err := e.store.Transact(ctx, func(tx store.Store) error {
		var err error
		charge, err = tx.ChargeByID(ctx, chargeID)
		if err != nil {
			return err
		}
		if charge.OriginID != userID && charge.DestinationID != userID {
			return apperr.Conflict("not authorized to cancel")
		}

		switch charge.Status {
		case models.StatusCanceled:
			return nil
		case models.StatusPending:
			charge.Status = models.StatusCanceled
			return tx.SaveCharge(ctx, charge)
		}

		switch charge.PaymentMethod {
		case models.MethodBalance:
			return e.refundBalance(ctx, tx, charge)
		case models.MethodCard:
			return e.refundCard(ctx, tx, charge)
		}
		return tx.SaveCharge(ctx, charge)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("charge canceled",
		zap.Uint("charge_id", charge.ID), zap.Uint("user_id", userID))
	return charge, nil
}

// refundBalance reverses a balance settlement: the receiver gives the
// amount back to the payer.
func (e *engine) refundBalance(ctx context.Context, tx store.Store, charge *models.Charge) error {
	receiverAccount, err := tx.AccountByUserID(ctx, charge.OriginID)
	if err != nil {
		return err
	}
	payerAccount, err := tx.AccountByUserID(ctx, charge.DestinationID)
	if err != nil {
		return err
	}

	receiverAccount.Balance = receiverAccount.Balance.Sub(charge.Amount)
	payerAccount.Balance = payerAccount.Balance.Add(charge.Amount)
	charge.Status = models.StatusCanceled

	if err := tx.SaveAccount(ctx, receiverAccount); err != nil {
		return err
	}
	if err := tx.SaveAccount(ctx, payerAccount); err != nil {
		return err
	}
	return tx.SaveCharge(ctx, charge)
}

// refundCard charges back a card settlement. The authorizer must approve
// the chargeback; only the receiver's balance moves, the card network
// refunds the payer out-of-band.
func (e *engine) refundCard(ctx context.Context, tx store.Store, charge *models.Charge) error {
	if !e.auth.Authorize(ctx) {
		return apperr.Conflict("authorizer denied chargeback")
	}

	receiverAccount, err := tx.AccountByUserID(ctx, charge.OriginID)
	if err != nil {
		return err
	}
	receiverAccount.Balance = receiverAccount.Balance.Sub(charge.Amount)
	charge.Status = models.StatusCanceled

	if err := tx.SaveAccount(ctx, receiverAccount); err != nil {
		return err
	}
	return tx.SaveCharge(ctx, charge)
}
