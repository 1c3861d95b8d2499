package models

import "strings"

// Category identifies the kind of mobile-money event a message describes.
type Category string

const (
	CategoryIncomingMoney       Category = "incoming_money"
	CategoryPaymentToCode       Category = "payment_to_code"
	CategoryTransferToNumber    Category = "transfer_to_number"
	CategoryBankDeposit         Category = "bank_deposit"
	CategoryAirtimePayment      Category = "airtime_payment"
	CategoryCashPower           Category = "cash_power"
	CategoryThirdPartyInitiated Category = "third_party_initiated"
	CategoryWithdrawalFromAgent Category = "withdrawal_from_agent"
	CategoryBankTransfer        Category = "bank_transfer"
	CategoryInternetVoiceBundle Category = "internet_voice_bundle"
	CategoryFeesAndCharges      Category = "fees_and_charges"
	CategoryBalanceInquiry      Category = "balance_inquiry"
	CategoryOther               Category = "other"
)

// Categories lists every known category in classification priority order.
// The classifier depends on this exact ordering; CategoryOther is the
// fallback and carries no patterns.
var Categories = []Category{
	CategoryIncomingMoney,
	CategoryPaymentToCode,
	CategoryTransferToNumber,
	CategoryBankDeposit,
	CategoryAirtimePayment,
	CategoryCashPower,
	CategoryThirdPartyInitiated,
	CategoryWithdrawalFromAgent,
	CategoryBankTransfer,
	CategoryInternetVoiceBundle,
	CategoryFeesAndCharges,
	CategoryBalanceInquiry,
}

// Valid reports whether c is one of the known categories (including "other").
func (c Category) Valid() bool {
	if c == CategoryOther {
		return true
	}
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Display returns the human-readable label for a category:
// underscores become spaces and each word is title-cased.
func (c Category) Display() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
