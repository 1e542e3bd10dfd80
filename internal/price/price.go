package price

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// CurrencyCode is fixed per deployment; this scraper targets the Turkish
// storefront only.
const CurrencyCode = "try"

type kind int

const (
	kindNull kind = iota
	kindNumber
	kindRaw
)

// Amount is a normalized price value. It is one of three things: absent
// (null), a parsed decimal, or the original raw text when the input could not
// be parsed. Keeping the raw text instead of collapsing it to null lets
// downstream consumers tell "field missing" apart from "field malformed".
type Amount struct {
	kind  kind
	value float64
	raw   string
}

var numericPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Normalize parses locale-formatted currency text ("129,90 TL",
// "1.234,56 TL") into a canonical decimal. A nil input stays null. Non-nil
// input that does not parse is passed through as raw text.
func Normalize(raw *string) Amount {
	if raw == nil {
		return Amount{}
	}

	cleaned := strings.TrimSpace(*raw)
	for _, token := range []string{"TL", "TRY", "₺"} {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	// Turkish format: "." groups thousands, "," marks the decimal.
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if !numericPattern.MatchString(cleaned) {
		return Amount{kind: kindRaw, raw: *raw}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Amount{kind: kindRaw, raw: *raw}
	}

	return Amount{kind: kindNumber, value: value}
}

// FromFloat wraps an already-known decimal.
func FromFloat(v float64) Amount {
	return Amount{kind: kindNumber, value: v}
}

// Format renders a decimal the way the storefront renders prices, with "."
// thousand separators and a "," decimal mark.
func Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)

	whole := parts[0]
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	return grouped.String() + "," + parts[1] + " TL"
}

// IsNull reports whether the amount is absent.
func (a Amount) IsNull() bool { return a.kind == kindNull }

// Value returns the parsed decimal and whether one is present.
func (a Amount) Value() (float64, bool) {
	return a.value, a.kind == kindNumber
}

// Raw returns the unparseable original text and whether the amount carries one.
func (a Amount) Raw() (string, bool) {
	return a.raw, a.kind == kindRaw
}

func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case kindNumber:
		return json.Marshal(a.value)
	case kindRaw:
		return json.Marshal(a.raw)
	default:
		return []byte("null"), nil
	}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*a = Amount{kind: kindNumber, value: v}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Amount{kind: kindRaw, raw: s}
	return nil
}
