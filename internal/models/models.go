package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ChargeStatus string

const (
	StatusPending  ChargeStatus = "PENDING"
	StatusPaid     ChargeStatus = "PAID"
	StatusCanceled ChargeStatus = "CANCELED"
)

// ParseChargeStatus accepts any casing and canonicalizes to upper-case.
func ParseChargeStatus(s string) (ChargeStatus, error) {
	switch ChargeStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusPaid:
		return StatusPaid, nil
	case StatusCanceled:
		return StatusCanceled, nil
	}
	return "", fmt.Errorf("unknown charge status %q", s)
}

type PaymentMethod string

const (
	// MethodNone is a PENDING charge's payment method; it is only set on settlement.
	MethodNone    PaymentMethod = ""
	MethodBalance PaymentMethod = "BALANCE"
	MethodCard    PaymentMethod = "CARD"
)

type User struct {
	gorm.Model
	Name         string `gorm:"size:50;not null"`
	CPF          string `gorm:"uniqueIndex;size:11;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255"`
}

type Account struct {
	gorm.Model
	UserID  uint            `gorm:"uniqueIndex;not null"`
	Balance decimal.Decimal `gorm:"type:numeric(19,2);not null"`
}

type Charge struct {
	gorm.Model
	OriginID      uint            `gorm:"index;not null"`
	DestinationID uint            `gorm:"index;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(19,2);not null"`
	Description   string          `gorm:"size:255"`
	Status        ChargeStatus    `gorm:"size:16;index;not null"`
	PaymentMethod PaymentMethod   `gorm:"size:16"`
}
