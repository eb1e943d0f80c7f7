// Package core provides money parsing and formatting utilities.
//
// Amounts are shopspring decimals end to end; floats only appear at the
// presentation edge (percentages, chart values).
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultCurrency = "IDR"
	DefaultLocale   = "id-ID"
)

// currencySymbols holds the display symbols for the currencies the app is
// configured with; other ISO codes render with the code itself.
var currencySymbols = map[string]string{
	"IDR": "Rp",
	"USD": "$",
	"EUR": "€",
	"SGD": "S$",
	"MYR": "RM",
}

// zeroDecimalCurrencies are shown without a fraction part.
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// ParseAmount converts user input to a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, but not
// signs, thousands separators, or more than one separator.
//
// Examples:
//   ParseAmount("12.34") -> 12.34, nil
//   ParseAmount("12,5")  -> 12.5, nil
//   ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// FormatCurrency renders amount with the symbol of currencyCode and the digit
// grouping of locale, e.g. FormatCurrency(1500000, "IDR", "id-ID") ->
// "Rp 1.500.000". Zero-decimal currencies are rounded to whole units.
func FormatCurrency(amount decimal.Decimal, currencyCode, locale string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return "", fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", locale, err)
	}

	code := unit.String()
	digits := 2
	if zeroDecimalCurrencies[code] {
		digits = 0
	}

	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	p := message.NewPrinter(tag)
	value := amount.Round(int32(digits)).InexactFloat64()
	formatted := p.Sprint(number.Decimal(value,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits)))

	return sign + symbol + " " + formatted, nil
}

// FormatCompact abbreviates large amounts for chart axes: 1500 -> "1.5K",
// 2300000 -> "2.3M". The decimal separator follows locale.
func FormatCompact(amount decimal.Decimal, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	p := message.NewPrinter(tag)

	abs := amount.Abs()
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	steps := []struct {
		limit  decimal.Decimal
		suffix string
	}{
		{decimal.New(1, 12), "T"},
		{decimal.New(1, 9), "B"},
		{decimal.New(1, 6), "M"},
		{decimal.New(1, 3), "K"},
	}
	for _, s := range steps {
		if abs.GreaterThanOrEqual(s.limit) {
			v := abs.Div(s.limit).InexactFloat64()
			return sign + p.Sprint(number.Decimal(v, number.MaxFractionDigits(1))) + s.suffix
		}
	}
	return sign + p.Sprint(number.Decimal(abs.InexactFloat64(), number.MaxFractionDigits(2)))
}

// PlainAmount renders a decimal without grouping or currency, as stored.
func PlainAmount(a decimal.Decimal) string {
	return a.String()
}
