// Package i18n formats numbers, money and dates for notification templates.
//
// A LocaleFormat is immutable and safe for concurrent use. Build one from
// options or take a predefined format:
//
//	lf := i18n.NewLocaleFormat(
//		i18n.WithDecimalSeparator(","),
//		i18n.WithThousandSeparator("."),
//		i18n.WithCurrencySymbol("€"),
//		i18n.WithCurrencyPosition(i18n.CurrencyAfter),
//	)
//	lf.FormatCurrency(1234.5) // "1.234,50 €"
//
// FormatFor resolves a BCP 47 tag such as "de-DE" or "en" to a predefined
// format, falling back from region to base language. The tag "store" names
// the shop's house format, which FormatStore also returns.
package i18n
