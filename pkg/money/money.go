// Package money formats prices for display. Amounts are never rounded before
// this point; formatting keeps at most two fraction digits.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const nairaSign = "₦"

var printer = message.NewPrinter(language.English)

// FormatNaira renders an amount the way the storefront displays prices,
// e.g. 2000 -> "₦2,000" and 1234.5 -> "₦1,234.5".
func FormatNaira(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	f, _ := amount.Float64()
	return sign + nairaSign + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}
