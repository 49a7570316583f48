// Package format renders money values for customer-facing surfaces
// such as event payloads, logs, and receipts.
package format

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Amount renders a money value with its currency symbol. Unknown
// currency codes fall back to "<amount> <code>".
func Amount(m models.Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return printer.Sprintf("%.2f %s", m.ToFloat(), m.Currency)
	}
	return printer.Sprint(currency.Symbol(unit.Amount(m.ToFloat())))
}

// ValidCurrencyCode reports whether code is a known ISO 4217 currency.
func ValidCurrencyCode(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}
