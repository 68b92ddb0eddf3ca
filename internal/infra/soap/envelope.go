// Package soap builds and sends SOAP 1.1 requests against the upstream ERP.
// The upstream embeds JSON inside its result element rather than returning
// structured XML, so requests are rendered textually and responses are
// handed back as raw body text for the extractor to interpret.
package soap

import "strings"

// Param is one method parameter, rendered as a same-named child element.
// Order is preserved; the upstream service is positional about some of them.
type Param struct {
	Name  string
	Value string
}

var entityEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with their named entities
// and leaves every other character untouched.
func Escape(s string) string {
	return entityEscaper.Replace(s)
}

// BuildEnvelope renders a SOAP 1.1 envelope for the given method and
// parameters, with the method element namespaced to ns. Pure function:
// omitted parameters are simply absent elements, and no validation is
// applied beyond escaping.
func BuildEnvelope(ns, method string, params []Param) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString("\n")
	b.WriteString(`<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">`)
	b.WriteString("\n  <soap:Body>\n    <")
	b.WriteString(method)
	b.WriteString(` xmlns="`)
	b.WriteString(Escape(ns))
	b.WriteString("\">\n")
	for _, p := range params {
		b.WriteString("      <")
		b.WriteString(p.Name)
		b.WriteString(">")
		b.WriteString(Escape(p.Value))
		b.WriteString("</")
		b.WriteString(p.Name)
		b.WriteString(">\n")
	}
	b.WriteString("    </")
	b.WriteString(method)
	b.WriteString(">\n  </soap:Body>\n</soap:Envelope>")
	return b.String()
}
