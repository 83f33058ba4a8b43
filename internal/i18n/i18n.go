// Package i18n resolves user-visible message codes to Dutch or English text.
// Dutch is the default and fallback language: the back office operates in
// Dutch, and approval-flow failures must reach drivers in Dutch.
package i18n

import "strings"

const defaultLang = "nl"

var translations = map[string]map[string]string{
	"nl": {
		"no_customer_found":      "Geen klant gevonden voor dit weekoverzicht",
		"service_overloaded":     "De dienst is overbelast, probeer het later opnieuw",
		"no_rate_found":          "Geen tarief gevonden in het document",
		"suggestion_unavailable": "Tariefsuggesties zijn niet beschikbaar",
		"invalid_json":           "Ongeldige aanvraag",
		"validation_failed":      "Validatie mislukt",
		"not_found":              "Niet gevonden",
		"internal_error":         "Er is iets misgegaan",
		"week_log_not_found":     "Weekoverzicht niet gevonden",
		"customer_not_found":     "Klant niet gevonden",
		"method_not_allowed":     "Methode niet toegestaan",
	},
	"en": {
		"no_customer_found":      "No customer found for this weekly log",
		"service_overloaded":     "The service is overloaded, please try again later",
		"no_rate_found":          "No rate found in the document",
		"suggestion_unavailable": "Rate suggestions are not available",
		"invalid_json":           "Invalid request",
		"validation_failed":      "Validation failed",
		"not_found":              "Not found",
		"internal_error":         "Something went wrong",
		"week_log_not_found":     "Weekly log not found",
		"customer_not_found":     "Customer not found",
		"method_not_allowed":     "Method not allowed",
	},
}

// T translates a message code, falling back to Dutch for unknown languages
// and to the code itself for unknown codes.
func T(lang, code string) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[defaultLang]
	}
	if msg, ok := table[code]; ok {
		return msg
	}
	if lang != defaultLang {
		if msg, ok := translations[defaultLang][code]; ok {
			return msg
		}
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header
// value, defaulting to Dutch.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := translations[base]; ok {
			return base
		}
	}
	return defaultLang
}
