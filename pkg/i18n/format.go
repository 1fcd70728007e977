package i18n

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Currency placement relative to the amount.
const (
	CurrencyBefore = "before"
	CurrencyAfter  = "after"
)

// compactSymbols are currency symbols written flush against a leading amount.
var compactSymbols = map[string]bool{
	"$": true,
	"£": true,
	"¥": true,
	"₩": true,
}

// LocaleFormat contains formatting rules for numbers, money and dates.
// It is immutable after creation and safe for concurrent use.
type LocaleFormat struct {
	decimalSeparator  string
	thousandSeparator string
	currencySymbol    string
	currencyPosition  string
	currencySpacing   *bool // nil means derive from the symbol
	percentSymbol     string
	dateFormat        string
	timeFormat        string
	dateTimeFormat    string
}

// LocaleFormatOption configures a LocaleFormat during construction.
type LocaleFormatOption func(*LocaleFormat)

// NewLocaleFormat creates a new LocaleFormat with the given options.
// Without options it formats like US English.
func NewLocaleFormat(opts ...LocaleFormatOption) *LocaleFormat {
	lf := &LocaleFormat{
		decimalSeparator:  ".",
		thousandSeparator: ",",
		currencySymbol:    "$",
		currencyPosition:  CurrencyBefore,
		percentSymbol:     "%",
		dateFormat:        "01/02/2006",
		timeFormat:        "3:04 PM",
		dateTimeFormat:    "01/02/2006 3:04 PM",
	}

	for _, opt := range opts {
		opt(lf)
	}

	return lf
}

// WithDecimalSeparator sets the decimal separator.
func WithDecimalSeparator(sep string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.decimalSeparator = sep }
}

// WithThousandSeparator sets the grouping separator. An empty string disables grouping.
func WithThousandSeparator(sep string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.thousandSeparator = sep }
}

// WithCurrencySymbol sets the currency symbol.
func WithCurrencySymbol(symbol string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.currencySymbol = symbol }
}

// WithCurrencyPosition sets the currency position (CurrencyBefore or CurrencyAfter).
func WithCurrencyPosition(pos string) LocaleFormatOption {
	return func(lf *LocaleFormat) {
		if pos == CurrencyBefore || pos == CurrencyAfter {
			lf.currencyPosition = pos
		}
	}
}

// WithCurrencySpacing forces or suppresses the space between symbol and amount.
func WithCurrencySpacing(space bool) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.currencySpacing = &space }
}

// WithPercentSymbol sets the percent symbol.
func WithPercentSymbol(symbol string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.percentSymbol = symbol }
}

// WithDateFormat sets the date layout (Go time layout).
func WithDateFormat(format string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.dateFormat = format }
}

// WithTimeFormat sets the time layout (Go time layout).
func WithTimeFormat(format string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.timeFormat = format }
}

// WithDateTimeFormat sets the datetime layout (Go time layout).
func WithDateTimeFormat(format string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.dateTimeFormat = format }
}

// FormatNumber formats n with up to two decimals, trimming trailing zeros.
func (lf *LocaleFormat) FormatNumber(n float64) string {
	cents := int64(math.Round(math.Abs(n) * 100))
	result := lf.group(cents / 100)
	if frac := cents % 100; frac > 0 {
		dec := strings.TrimRight(pad2(frac), "0")
		result += lf.decimalSeparator + dec
	}
	if n < 0 && cents > 0 {
		result = "-" + result
	}
	return result
}

// FormatCurrency formats amount with exactly two decimals and the locale's symbol.
func (lf *LocaleFormat) FormatCurrency(amount float64) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	num := lf.group(cents/100) + lf.decimalSeparator + pad2(cents%100)

	var result string
	if lf.currencyPosition == CurrencyBefore {
		if lf.spaced() {
			result = lf.currencySymbol + " " + num
		} else {
			result = lf.currencySymbol + num
		}
	} else {
		if lf.spaced() {
			result = num + " " + lf.currencySymbol
		} else {
			result = num + lf.currencySymbol
		}
	}

	if amount < 0 && cents > 0 {
		result = "-" + result
	}
	return result
}

// FormatPercent formats a ratio (0.5 = 50%) with at most one decimal.
func (lf *LocaleFormat) FormatPercent(n float64) string {
	tenths := int64(math.Round(math.Abs(n) * 1000))
	result := strconv.FormatInt(tenths/10, 10)
	if frac := tenths % 10; frac > 0 {
		result += lf.decimalSeparator + strconv.FormatInt(frac, 10)
	}
	if n < 0 && tenths > 0 {
		result = "-" + result
	}
	return result + lf.percentSymbol
}

// FormatDate formats t with the locale's date layout. Zero time yields "".
func (lf *LocaleFormat) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(lf.dateFormat)
}

// FormatTime formats t with the locale's time layout. Zero time yields "".
func (lf *LocaleFormat) FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(lf.timeFormat)
}

// FormatDateTime formats t with the locale's datetime layout. Zero time yields "".
func (lf *LocaleFormat) FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(lf.dateTimeFormat)
}

func (lf *LocaleFormat) spaced() bool {
	if lf.currencySpacing != nil {
		return *lf.currencySpacing
	}
	if lf.currencyPosition == CurrencyAfter {
		return true
	}
	return !compactSymbols[lf.currencySymbol] && !strings.HasSuffix(lf.currencySymbol, "$")
}

// group inserts the thousand separator into a non-negative integer.
func (lf *LocaleFormat) group(n int64) string {
	s := strconv.FormatInt(n, 10)
	if lf.thousandSeparator == "" || len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(lf.thousandSeparator)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
