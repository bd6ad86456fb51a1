package services

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CurrencyMarker prefixes every formatted amount, followed by a space.
const CurrencyMarker = "$"

// Fraction digits used when rendering amounts.
const (
	DisplayDigits int32 = 0 // on-screen totals
	StoredDigits  int32 = 2 // persisted and API amounts
)

// ParseAmount converts a locale formatted money string ("$ 12.345,67") into a
// decimal. Thousands separators are dots and the decimal separator is a comma.
// Anything that does not parse yields zero.
func ParseAmount(text string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	d, _ := parseFinite(cleaned)
	return d
}

// ParseNumber parses a plain form value such as "12.5" (dot decimal, no
// grouping). Blank or malformed input yields zero.
func ParseNumber(text string) decimal.Decimal {
	d, _ := parseFinite(strings.TrimSpace(text))
	return d
}

// parseFinite parses a plain decimal literal. Values outside the float64
// range, or too small to be distinguished from zero, yield zero. ok is false
// when s is not a number at all.
func parseFinite(s string) (d decimal.Decimal, ok bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return decimal.Zero, false
	}
	d, err = decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if f == 0 || math.IsInf(f, 0) {
		return decimal.Zero, true
	}
	return d, true
}

// FormatAmount renders amount as "$ 1.234.567,89" with exactly fractionDigits
// decimals. Negative values are prefixed with "-".
func FormatAmount(amount decimal.Decimal, fractionDigits int32) string {
	if fractionDigits < 0 {
		fractionDigits = 0
	}

	rounded := amount.Round(fractionDigits)
	raw := rounded.Abs().StringFixed(fractionDigits)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	result := CurrencyMarker + " " + applyThousandsGrouping(intPart)
	if fracPart != "" {
		result += "," + fracPart
	}
	if rounded.IsNegative() {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts a dot every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// LooseDecimal is a numeric field that accepts JSON numbers, numeric strings,
// money text or null. Decoding never fails: unparseable values become zero.
// Present reports whether a non-blank value was supplied.
type LooseDecimal struct {
	decimal.Decimal
	Present bool
}

// NewLooseDecimal wraps d as a supplied value.
func NewLooseDecimal(d decimal.Decimal) LooseDecimal {
	return LooseDecimal{Decimal: d, Present: true}
}

func (l *LooseDecimal) UnmarshalJSON(data []byte) error {
	*l = LooseDecimal{}

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		l.Present = true
		l.Decimal = parseLooseText(s)
		return nil
	}

	l.Present = true
	l.Decimal, _ = parseFinite(raw)
	return nil
}

func (l LooseDecimal) MarshalJSON() ([]byte, error) {
	if !l.Present {
		return []byte(`""`), nil
	}
	return json.Marshal(l.Decimal.String())
}

// parseLooseText tries a plain number first ("1500.5") and falls back to
// locale money text ("$ 1.500,5").
func parseLooseText(s string) decimal.Decimal {
	if d, ok := parseFinite(s); ok {
		return d
	}
	return ParseAmount(s)
}
