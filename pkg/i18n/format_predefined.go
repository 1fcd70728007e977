package i18n

import (
	"golang.org/x/text/language"
)

// FormatStore is the print shop's house format: euro amounts written
// "€123.40" and numeric day/month/year dates without padding.
func FormatStore() *LocaleFormat {
	return NewLocaleFormat(
		WithThousandSeparator(""),
		WithCurrencySymbol("€"),
		WithCurrencyPosition(CurrencyBefore),
		WithCurrencySpacing(false),
		WithDateFormat("2/1/2006"),
		WithTimeFormat("15:04"),
		WithDateTimeFormat("2/1/2006 15:04"),
	)
}

// FormatEnUS returns a LocaleFormat configured for US English (en-US).
func FormatEnUS() *LocaleFormat {
	return NewLocaleFormat()
}

// FormatEnGB returns a LocaleFormat configured for British English (en-GB).
func FormatEnGB() *LocaleFormat {
	return NewLocaleFormat(
		WithCurrencySymbol("£"),
		WithDateFormat("02/01/2006"),
		WithTimeFormat("15:04"),
		WithDateTimeFormat("02/01/2006 15:04"),
	)
}

// FormatEsES returns a LocaleFormat configured for Spanish (es-ES).
func FormatEsES() *LocaleFormat {
	return NewLocaleFormat(
		WithDecimalSeparator(","),
		WithThousandSeparator("."),
		WithCurrencySymbol("€"),
		WithCurrencyPosition(CurrencyAfter),
		WithDateFormat("2/1/2006"),
		WithTimeFormat("15:04"),
		WithDateTimeFormat("2/1/2006, 15:04"),
	)
}

// FormatDeDE returns a LocaleFormat configured for German (de-DE).
func FormatDeDE() *LocaleFormat {
	return NewLocaleFormat(
		WithDecimalSeparator(","),
		WithThousandSeparator("."),
		WithCurrencySymbol("€"),
		WithCurrencyPosition(CurrencyAfter),
		WithDateFormat("02.01.2006"),
		WithTimeFormat("15:04"),
		WithDateTimeFormat("02.01.2006 15:04"),
	)
}

// FormatFrFR returns a LocaleFormat configured for French (fr-FR).
func FormatFrFR() *LocaleFormat {
	return NewLocaleFormat(
		WithDecimalSeparator(","),
		WithThousandSeparator(" "),
		WithCurrencySymbol("€"),
		WithCurrencyPosition(CurrencyAfter),
		WithDateFormat("02/01/2006"),
		WithTimeFormat("15:04"),
		WithDateTimeFormat("02/01/2006 15:04"),
	)
}

var byTag = map[string]func() *LocaleFormat{
	"store": FormatStore,
	"en-US": FormatEnUS,
	"en-GB": FormatEnGB,
	"es-ES": FormatEsES,
	"de-DE": FormatDeDE,
	"fr-FR": FormatFrFR,
}

var byBase = map[string]func() *LocaleFormat{
	"en": FormatEnUS,
	"es": FormatEsES,
	"de": FormatDeDE,
	"fr": FormatFrFR,
}

// FormatFor resolves a BCP 47 tag (or "store") to a LocaleFormat.
// Exact region matches win; otherwise the base language is used.
// The second return value is false when nothing matched.
func FormatFor(tag string) (*LocaleFormat, bool) {
	if f, ok := byTag[tag]; ok {
		return f(), true
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return nil, false
	}
	if f, ok := byTag[parsed.String()]; ok {
		return f(), true
	}
	base, _ := parsed.Base()
	if f, ok := byBase[base.String()]; ok {
		return f(), true
	}
	return nil, false
}
