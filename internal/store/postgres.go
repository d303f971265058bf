package store

import (
	"context"
	"errors"

	"github.com/luciano-mota/payment-gateway/configs"
	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/logger"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func NewDB() {
	dsn := configs.AppConfig.DB.DSN
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	}), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	DB = db
	logger.Log.Info("connected to the database")
}

func DBMigrate() {
	DB.AutoMigrate(&models.User{}, &models.Account{}, &models.Charge{})
	logger.Log.Info("migrations loaded")
}

// Gorm implements Store on a *gorm.DB. The zero value is not usable; build
// one with NewGorm.
type Gorm struct {
	db *gorm.DB
	// inTx marks a transaction-bound Store; reads of charge and account
	// rows then take FOR UPDATE locks.
	inTx bool
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.KindNotFound, what+" not found")
	}
	return err
}

func (g *Gorm) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (g *Gorm) UserByCPF(ctx context.Context, cpf string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).Where("cpf = ?", cpf).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (g *Gorm) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (g *Gorm) SaveUser(ctx context.Context, user *models.User) error {
	return g.db.WithContext(ctx).Save(user).Error
}

func (g *Gorm) AccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	q := g.db.WithContext(ctx)
	if g.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, notFound(err, "account")
	}
	return &account, nil
}

func (g *Gorm) SaveAccount(ctx context.Context, account *models.Account) error {
	return g.db.WithContext(ctx).Save(account).Error
}

func (g *Gorm) ChargeByID(ctx context.Context, id uint) (*models.Charge, error) {
	var charge models.Charge
	q := g.db.WithContext(ctx)
	if g.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&charge, id).Error; err != nil {
		return nil, notFound(err, "charge")
	}
	return &charge, nil
}

func (g *Gorm) ChargesByOrigin(ctx context.Context, originID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	return g.listCharges(ctx, "origin_id", originID, status)
}

func (g *Gorm) ChargesByDestination(ctx context.Context, destinationID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	return g.listCharges(ctx, "destination_id", destinationID, status)
}

func (g *Gorm) listCharges(ctx context.Context, column string, userID uint, status *models.ChargeStatus) ([]models.Charge, error) {
	q := g.db.WithContext(ctx).Where(column+" = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var charges []models.Charge
	if err := q.Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func (g *Gorm) SaveCharge(ctx context.Context, charge *models.Charge) error {
	return g.db.WithContext(ctx).Save(charge).Error
}

func (g *Gorm) Transact(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx, inTx: true})
	})
}
