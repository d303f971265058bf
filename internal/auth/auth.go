// Package auth handles registration and login. Every registered user gets
// exactly one zero-balance account, created in the same transaction.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/store"
	"github.com/luciano-mota/payment-gateway/internal/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type Service struct {
	store     store.Store
	jwtSecret []byte
	logger    *zap.Logger
}

func NewService(st store.Store, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{store: st, jwtSecret: []byte(jwtSecret), logger: logger}
}

func (s *Service) Register(ctx context.Context, name, cpf, email, password string) (*models.User, error) {
	cpf = validation.NormalizeCPF(cpf)
	if !validation.ValidCPF(cpf) {
		return nil, apperr.InvalidArgument("invalid cpf")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		CPF:          cpf,
		Email:        email,
		PasswordHash: string(hash),
	}
	err = s.store.Transact(ctx, func(tx store.Store) error {
		if _, err := tx.UserByCPF(ctx, cpf); err == nil {
			return apperr.InvalidArgument("cpf already registered")
		} else if !apperr.IsKind(err, apperr.KindNotFound) {
			return err
		}
		if _, err := tx.UserByEmail(ctx, email); err == nil {
			return apperr.InvalidArgument("email already registered")
		} else if !apperr.IsKind(err, apperr.KindNotFound) {
			return err
		}

		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		account := &models.Account{UserID: user.ID, Balance: decimal.Zero}
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login accepts a CPF or an email. Bad login and bad password collapse into
// the same error so the response does not leak which field was wrong.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	user, err := s.store.UserByCPF(ctx, validation.NormalizeCPF(login))
	if apperr.IsKind(err, apperr.KindNotFound) {
		user, err = s.store.UserByEmail(ctx, login)
	}
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", apperr.InvalidArgument("invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.InvalidArgument("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("failed to sign jwt", zap.Error(err))
		return "", err
	}
	return signed, nil
}
