package cartera_test

import (
	"strings"
	"testing"

	"github.com/madecentro/cartera-bfa-go/internal/cartera"
)

func TestExtract_PlainArrayInResultElement(t *testing.T) {
	body := `<?xml version="1.0"?><soap:Envelope><soap:Body><FooResponse>` +
		`<FooResult>[{"SALDO":"1500","DAIAVEN":"5"}]</FooResult>` +
		`</FooResponse></soap:Body></soap:Envelope>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if !res.OK {
		t.Fatalf("expected ok, got reason %q", res.Reason)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	if res.Items[0]["SALDO"] != "1500" {
		t.Errorf("expected SALDO '1500', got %v", res.Items[0]["SALDO"])
	}
	if res.Items[0]["DAIAVEN"] != "5" {
		t.Errorf("expected DAIAVEN '5', got %v", res.Items[0]["DAIAVEN"])
	}
}

func TestExtract_HTMLEntityEscapedPayload(t *testing.T) {
	body := `<FooResult>[{&quot;SALDO&quot;:&quot;1500&quot;,&quot;DAIAVEN&quot;:&quot;5&quot;}]</FooResult>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if !res.OK {
		t.Fatalf("expected ok, got reason %q", res.Reason)
	}
	if res.Items[0]["SALDO"] != "1500" {
		t.Errorf("expected SALDO '1500', got %v", res.Items[0]["SALDO"])
	}
}

func TestExtract_NamespacePrefixAndCase(t *testing.T) {
	body := `<ns1:fooRESULT>[{"saldo":100}]</ns1:fooRESULT>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if !res.OK {
		t.Fatalf("expected ok, got reason %q", res.Reason)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
}

func TestExtract_MissingResultElementFallsBackToWholeBody(t *testing.T) {
	// Some servers skip the expected wrapper entirely.
	body := `<AnythingElse>[{"saldo":"250"}]</AnythingElse>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if !res.OK {
		t.Fatalf("expected ok via whole-body fallback, got reason %q", res.Reason)
	}
	if res.Items[0]["saldo"] != "250" {
		t.Errorf("expected saldo '250', got %v", res.Items[0]["saldo"])
	}
}

func TestExtract_NoBrackets(t *testing.T) {
	body := `<FooResult>No se encontraron registros para el cliente.</FooResult>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if res.OK {
		t.Fatal("expected not-ok for bracket-free response")
	}
	if res.Snippet == "" {
		t.Error("expected a non-empty snippet")
	}
	if len(res.Snippet) > 500 {
		t.Errorf("snippet too long: %d chars", len(res.Snippet))
	}
}

func TestExtract_SnippetCappedAt500(t *testing.T) {
	body := strings.Repeat("x", 2000)

	res := cartera.NewExtractor("FooResult").Extract(body)

	if res.OK {
		t.Fatal("expected not-ok")
	}
	if len(res.Snippet) != 500 {
		t.Errorf("expected 500-char snippet, got %d", len(res.Snippet))
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	body := `<FooResult>[{"saldo": }]</FooResult>`

	res := cartera.NewExtractor("FooResult").Extract(body)

	if res.OK {
		t.Fatal("expected not-ok for malformed JSON")
	}
	if res.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestExtract_EmptyBody(t *testing.T) {
	res := cartera.NewExtractor("FooResult").Extract("")

	if res.OK {
		t.Fatal("expected not-ok for empty body")
	}
	if res.Snippet == "" {
		t.Error("expected a placeholder snippet for empty body")
	}
}

func TestExtract_EmptyArrayIsValid(t *testing.T) {
	res := cartera.NewExtractor("FooResult").Extract(`<FooResult>[]</FooResult>`)

	if !res.OK {
		t.Fatalf("expected ok for empty array, got reason %q", res.Reason)
	}
	if len(res.Items) != 0 {
		t.Errorf("expected zero items, got %d", len(res.Items))
	}
}
