package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatCurrencies(t *testing.T) {
	tests := []struct {
		amount string
		myr    string
		usd    string
	}{
		{"0", "RM0.00", "$0.00"},
		{"350.75", "RM350.75", "$350.75"},
		{"1234.5", "RM1,234.50", "$1,234.50"},
		{"46650", "RM46,650.00", "$46,650.00"},
		{"1234567.891", "RM1,234,567.89", "$1,234,567.89"},
		{"-25", "-RM25.00", "-$25.00"},
	}
	for _, tt := range tests {
		if got := FormatMYR(dec(tt.amount)); got != tt.myr {
			t.Fatalf("FormatMYR(%s) = %q, want %q", tt.amount, got, tt.myr)
		}
		if got := FormatUSD(dec(tt.amount)); got != tt.usd {
			t.Fatalf("FormatUSD(%s) = %q, want %q", tt.amount, got, tt.usd)
		}
	}
}

func TestParseAmountReversesFormat(t *testing.T) {
	for _, raw := range []string{"0", "0.01", "350.75", "1753.75", "35075", "999999.99", "-42.09"} {
		amount := dec(raw)
		for _, formatted := range []string{FormatMYR(amount), FormatUSD(amount)} {
			parsed, err := ParseAmount(formatted)
			if err != nil {
				t.Fatalf("parse %q: %v", formatted, err)
			}
			if !parsed.Equal(amount) {
				t.Fatalf("round trip of %s via %q gave %s", raw, formatted, parsed)
			}
		}
	}
	if _, err := ParseAmount("RMabc"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestConvertUSDPerOunceToMYRPerGram(t *testing.T) {
	got := ConvertUSDPerOunceToMYRPerGram(BaseGoldPriceUSD)
	// 2350 * 4.65 / 31.1035
	if !got.Equal(dec("351.33")) {
		t.Fatalf("expected 351.33, got %s", got)
	}
}

func TestToMinorUnits(t *testing.T) {
	if got := ToMinorUnits(dec("768.59")); got != 76859 {
		t.Fatalf("expected 76859, got %d", got)
	}
	if got := ToMinorUnits(dec("25")); got != 2500 {
		t.Fatalf("expected 2500, got %d", got)
	}
}

func TestShippingFeeBoundary(t *testing.T) {
	if fee := ShippingFee(dec("4649.99")); !fee.Equal(FlatShippingFee) {
		t.Fatalf("below threshold expected flat fee, got %s", fee)
	}
	if fee := ShippingFee(FreeShippingThreshold); !fee.IsZero() {
		t.Fatalf("at threshold expected free shipping, got %s", fee)
	}
	if fee := ShippingFee(dec("35075")); !fee.IsZero() {
		t.Fatalf("above threshold expected free shipping, got %s", fee)
	}
}

func TestBreakdownEndToEndScenario(t *testing.T) {
	subtotal := dec("350.75").Mul(decimal.NewFromInt(2))
	totals := Breakdown(subtotal)
	if !totals.Subtotal.Equal(dec("701.50")) {
		t.Fatalf("subtotal %s", totals.Subtotal)
	}
	if !totals.Shipping.Equal(dec("25")) {
		t.Fatalf("shipping %s", totals.Shipping)
	}
	if !totals.Tax.Equal(dec("42.09")) {
		t.Fatalf("tax %s", totals.Tax)
	}
	if !totals.Total.Equal(dec("768.59")) {
		t.Fatalf("total %s", totals.Total)
	}
}

func TestSimulatorStaysWithinBound(t *testing.T) {
	sim := NewSimulator(rand.NewSource(42), DefaultMaxDeltaPercent)
	current := BaseGoldPriceUSD
	maxDelta := decimal.NewFromFloat(DefaultMaxDeltaPercent)
	for i := 0; i < 500; i++ {
		quote := sim.Next(current)
		if quote.ChangePercent.GreaterThan(maxDelta) {
			t.Fatalf("tick %d change %s exceeds bound", i, quote.ChangePercent)
		}
		limit := current.Mul(maxDelta).Div(decimal.NewFromInt(100)).Add(dec("0.01"))
		if quote.PriceUSD.Sub(current).Abs().GreaterThan(limit) {
			t.Fatalf("tick %d moved %s -> %s beyond bound", i, current, quote.PriceUSD)
		}
		if quote.IsUp != quote.PriceUSD.GreaterThanOrEqual(current) && !quote.PriceUSD.Equal(current) {
			t.Fatalf("tick %d direction mismatch: up=%v %s -> %s", i, quote.IsUp, current, quote.PriceUSD)
		}
		if !quote.PriceMYRPerGram.Equal(ConvertUSDPerOunceToMYRPerGram(quote.PriceUSD)) {
			t.Fatalf("tick %d MYR price not derived from USD price", i)
		}
		current = quote.PriceUSD
	}
}

func TestSimulatorIsDeterministicForSeed(t *testing.T) {
	a := NewSimulator(rand.NewSource(7), 0)
	b := NewSimulator(rand.NewSource(7), 0)
	for i := 0; i < 10; i++ {
		qa, qb := a.Next(BaseGoldPriceUSD), b.Next(BaseGoldPriceUSD)
		if !qa.PriceUSD.Equal(qb.PriceUSD) {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
	if a.MaxDeltaPercent() != DefaultMaxDeltaPercent {
		t.Fatalf("expected default bound, got %v", a.MaxDeltaPercent())
	}
}

func TestMalaysiaTimeOffset(t *testing.T) {
	utc := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	local := MalaysiaTime(utc)
	if _, offset := local.Zone(); offset != 8*60*60 {
		t.Fatalf("expected +08:00, got %d", offset)
	}
	if local.Hour() != 8 {
		t.Fatalf("expected 08:00 local, got %d", local.Hour())
	}
}
