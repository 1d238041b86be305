package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_A", "")
	t.Setenv("STOREFRONT_TEST_B", " console ")
	t.Setenv("STOREFRONT_TEST_C", "json")

	if got := First("fallback", "STOREFRONT_TEST_A", "STOREFRONT_TEST_B", "STOREFRONT_TEST_C"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
	if got := First("fallback", "STOREFRONT_TEST_MISSING"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Get("STOREFRONT_TEST_A", "x"); got != "x" {
		t.Fatalf("blank value should use fallback, got %q", got)
	}
}
