package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("EN-gb") != "en" {
		t.Fatalf("expected en for EN-gb")
	}
	if DetectLanguage("nl-NL,nl;q=0.8") != "nl" {
		t.Fatalf("expected nl")
	}
	if DetectLanguage("de-DE,de;q=0.8") != "nl" {
		t.Fatalf("expected nl fallback for unsupported language")
	}
	if DetectLanguage("") != "nl" {
		t.Fatalf("expected default nl")
	}
}

func TestTranslations(t *testing.T) {
	if T("nl", "no_customer_found") != "Geen klant gevonden voor dit weekoverzicht" {
		t.Fatalf("unexpected nl message")
	}
	if T("en", "no_customer_found") != "No customer found for this weekly log" {
		t.Fatalf("unexpected en message")
	}
	// unknown code -> fallback to code
	if T("nl", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> nl translation
	if T("de", "service_overloaded") != "De dienst is overbelast, probeer het later opnieuw" {
		t.Fatalf("expected nl fallback for de lang")
	}
}
