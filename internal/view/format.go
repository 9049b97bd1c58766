package view

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
}

// FormatPrice renders an amount with two decimals, grouped thousands and the
// currency symbol. Unknown codes are written as a prefix ("AED 12.00").
// An empty currency means USD.
func FormatPrice(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	num := printer.Sprintf("%.2f", amount)
	if sym, ok := currencySymbols[code]; ok {
		return sym + num
	}
	return code + " " + num
}

// FormatPriceRange is "N/A" without prices, a single price when max is unset
// or equal to min, and "min - max" otherwise.
func FormatPriceRange(lo, hi float64, currency string) string {
	if lo == 0 && hi == 0 {
		return NotAvailable
	}
	if hi != 0 && lo != hi {
		return FormatPrice(lo, currency) + " - " + FormatPrice(hi, currency)
	}
	return FormatPrice(lo, currency)
}

// ResolveImageURL turns a stored upload path into a browsable URL: backslashes
// become slashes and relative paths are joined to base. Absolute http(s)
// URLs pass through. Empty input stays empty.
func ResolveImageURL(path, base string) string {
	p := strings.TrimSpace(strings.ReplaceAll(path, `\`, "/"))
	if p == "" {
		return ""
	}
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || base == "" {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}
