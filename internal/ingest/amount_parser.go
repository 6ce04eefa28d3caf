package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount is an award range found in free text. Zero means unknown.
type Amount struct {
	Min      float64
	Max      float64
	Currency string
}

var (
	amountNumber = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(k|m|thousand|million)?\b`)
	currencyCode = regexp.MustCompile(`(?i)\b(GBP|EUR|USD|ZAR|CAD|AUD)\b`)
	randPrefix   = regexp.MustCompile(`\bR\s?\d`)
)

// ParseAmount extracts a min/max award and currency from text such as
// "up to £10,000" or "R50k - R200k". ok is false when no amount is found.
func ParseAmount(text string) (Amount, bool) {
	lower := strings.ToLower(text)

	var amounts []float64
	for _, m := range amountNumber.FindAllStringSubmatch(lower, -1) {
		val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || val <= 0 {
			continue
		}
		switch m[2] {
		case "k", "thousand":
			val *= 1_000
		case "m", "million":
			val *= 1_000_000
		}
		amounts = append(amounts, val)
	}
	if len(amounts) == 0 {
		return Amount{}, false
	}

	out := Amount{Currency: detectCurrency(text)}

	if len(amounts) == 1 {
		if strings.Contains(lower, "minimum") || strings.Contains(lower, "at least") || strings.Contains(lower, "from ") {
			out.Min = amounts[0]
			return out, true
		}
		// A single figure is treated as the ceiling.
		out.Max = amounts[0]
		return out, true
	}

	out.Min, out.Max = amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		if a < out.Min {
			out.Min = a
		}
		if a > out.Max {
			out.Max = a
		}
	}
	if out.Min == out.Max {
		out.Min = 0
	}
	return out, true
}

func detectCurrency(text string) string {
	if m := currencyCode.FindString(text); m != "" {
		return strings.ToUpper(m)
	}
	switch {
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "$"):
		return "USD"
	case randPrefix.MatchString(text):
		return "ZAR"
	}
	return ""
}

// BudgetRules merges an amount into budget_rules without overwriting keys the
// extractor already filled.
func (a Amount) BudgetRules(rules map[string]any) map[string]any {
	if rules == nil {
		rules = map[string]any{}
	}
	if _, ok := rules["amount_min"]; !ok && a.Min > 0 {
		rules["amount_min"] = a.Min
	}
	if _, ok := rules["amount_max"]; !ok && a.Max > 0 {
		rules["amount_max"] = a.Max
	}
	if _, ok := rules["currency"]; !ok && a.Currency != "" {
		rules["currency"] = a.Currency
	}
	return rules
}
