// Package extract classifies raw mobile-money SMS bodies and pulls
// structured fields out of them. Every function is a pure function of the
// message text; malformed input degrades to a default or absent value,
// never an error.
package extract

import (
	"regexp"

	"momolens/internal/models"
)

// categoryRule pairs a category with the pattern set that recognizes it.
type categoryRule struct {
	category models.Category
	patterns []*regexp.Regexp
}

// categoryRules is ordered by priority. Classification is first-match-wins:
// when a body matches the pattern sets of two categories, the earlier rule
// decides. Changing the order changes classification results.
var categoryRules = []categoryRule{
	{models.CategoryIncomingMoney, compileAll(
		`You have received.*RWF from`,
		`received.*RWF.*from`,
		`incoming.*payment.*from`,
	)},
	{models.CategoryPaymentToCode, compileAll(
		`Your payment of.*RWF to.*\d{5} has been completed`,
		`payment.*completed.*code.*\d{5}`,
		`sent.*RWF.*to.*\d{5}`,
	)},
	{models.CategoryTransferToNumber, compileAll(
		`transferred to.*\(250\d+\)`,
		`sent.*RWF.*to.*\(\d+\)`,
		`transfer.*completed.*to.*\d+`,
	)},
	{models.CategoryBankDeposit, compileAll(
		`bank deposit of.*RWF has been added`,
		`deposit.*bank.*RWF`,
		`bank.*transaction.*deposit`,
	)},
	{models.CategoryAirtimePayment, compileAll(
		`Your payment of.*RWF to Airtime`,
		`airtime.*purchase.*RWF`,
		`payment.*airtime.*completed`,
	)},
	{models.CategoryCashPower, compileAll(
		`Your payment of.*RWF to.*Cash Power`,
		`cash power.*purchase.*RWF`,
		`electricity.*payment.*RWF`,
	)},
	{models.CategoryThirdPartyInitiated, compileAll(
		`initiated by third party`,
		`third party.*transaction`,
		`external.*initiated`,
	)},
	{models.CategoryWithdrawalFromAgent, compileAll(
		`withdrawn.*RWF.*via agent`,
		`cash.*withdrawal.*agent`,
		`agent.*withdrawal.*RWF`,
	)},
	{models.CategoryBankTransfer, compileAll(
		`Bank Transfer.*completed`,
		`transfer.*bank.*completed`,
		`bank.*transaction.*transfer`,
	)},
	{models.CategoryInternetVoiceBundle, compileAll(
		`Internet.*Voice Bundle.*purchased`,
		`bundle.*internet.*voice`,
		`data.*bundle.*purchased`,
	)},
	{models.CategoryFeesAndCharges, compileAll(
		`fee.*charged`,
		`service.*charge`,
		`transaction.*fee`,
	)},
	{models.CategoryBalanceInquiry, compileAll(
		`balance.*inquiry`,
		`check.*balance`,
		`account.*balance`,
	)},
}

// compileAll compiles each pattern case-insensitively.
func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// Classify returns the category of a message body. It tests each category's
// pattern set in priority order and returns the first category with any
// matching pattern, or CategoryOther when nothing matches.
func Classify(body string) models.Category {
	for _, rule := range categoryRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(body) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}
