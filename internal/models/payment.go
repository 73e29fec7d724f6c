package models

import (
	"time"
)

type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MemberID      uint      `json:"member_id" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentDate   time.Time `json:"payment_date" gorm:"type:date;not null"`
	PaymentMethod string    `json:"payment_method" gorm:"not null"` // cash, credit_card, debit_card, bank_transfer, other
	Description   string    `json:"description" gorm:"type:text"`
	ReceiptNumber string    `json:"receipt_number" gorm:"size:40;uniqueIndex;not null"`
	CreatedBy     uint      `json:"created_by" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

func ValidPaymentMethod(method string) bool {
	switch PaymentMethod(method) {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}
