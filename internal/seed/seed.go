package seed

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/luciano-mota/payment-gateway/internal/logger"
	"github.com/luciano-mota/payment-gateway/internal/models"
	"github.com/luciano-mota/payment-gateway/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const seedPassword = "password123"

// Demo users with valid CPF check digits and opening balances.
var testUsers = []struct {
	Name    string
	CPF     string
	Email   string
	Balance string
}{
	{"Alice Souza", "52998224725", "alice@test.com", "5000.00"},
	{"Bruno Lima", "15350946056", "bruno@test.com", "10000.00"},
	{"Carla Mendes", "11144477735", "carla@test.com", "0.00"},
}

func Run() {
	db := store.DB

	emails := make([]string, 0, len(testUsers))
	for _, u := range testUsers {
		emails = append(emails, u.Email)
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email IN ?", emails).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count >= int64(len(testUsers)) {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("failed to hash seed password", zap.Error(err))
	}
	hashed := string(hash)

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, u := range testUsers {
			user := models.User{Name: u.Name, CPF: u.CPF, Email: u.Email, PasswordHash: hashed}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			account := models.Account{UserID: user.ID, Balance: decimal.RequireFromString(u.Balance)}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded demo users", zap.Int("count", len(testUsers)), zap.String("password", seedPassword))
}
