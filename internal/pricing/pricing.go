// Package pricing holds the storefront's money rules: gold price conversion,
// display formatting, ticker simulation and checkout totals.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goldjewelmy/goldstore-backend/pkg/enums"
)

var (
	// TroyOunceToGram is grams per troy ounce.
	TroyOunceToGram = decimal.RequireFromString("31.1035")
	// USDToMYR is the fixed exchange rate used for display prices.
	USDToMYR = decimal.RequireFromString("4.65")
	// BaseGoldPriceUSD is the reference spot price per troy ounce.
	BaseGoldPriceUSD = decimal.NewFromInt(2350)

	FallbackMYRPerGram = decimal.RequireFromString("350.75")
	FallbackUSD        = decimal.NewFromInt(2350)
)

var displayPrinter = message.NewPrinter(language.English)

// ConvertUSDPerOunceToMYRPerGram maps a per-ounce USD price to a per-gram MYR
// price rounded to two decimals.
func ConvertUSDPerOunceToMYRPerGram(usdPerOunce decimal.Decimal) decimal.Decimal {
	return usdPerOunce.Mul(USDToMYR).Div(TroyOunceToGram).Round(2)
}

// FormatMYR renders amount as RM1,234.50.
func FormatMYR(amount decimal.Decimal) string {
	return format(enums.CurrencyMYR, amount)
}

// FormatUSD renders amount as $1,234.50.
func FormatUSD(amount decimal.Decimal) string {
	return format(enums.CurrencyUSD, amount)
}

// Format renders amount in the given currency.
func Format(currency enums.Currency, amount decimal.Decimal) string {
	return format(currency, amount)
}

func format(currency enums.Currency, amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + symbol(currency) + groupThousands(rounded)
}

func groupThousands(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return displayPrinter.Sprintf("%d", decimal.RequireFromString(whole).IntPart()) + "." + frac
}

func symbol(currency enums.Currency) string {
	switch currency {
	case enums.CurrencyUSD:
		return "$"
	case enums.CurrencyMYR:
		return "RM"
	default:
		return string(currency) + " "
	}
}

// ParseAmount reverses FormatMYR and FormatUSD.
func ParseAmount(display string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(display)
	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	for _, prefix := range []string{"RM", "$", string(enums.CurrencyMYR), string(enums.CurrencyUSD)} {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), ",", "")
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", display, err)
	}
	if negative {
		value = value.Neg()
	}
	return value, nil
}

// ToMinorUnits converts an amount to integer sen/cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
