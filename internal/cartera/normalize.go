package cartera

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
)

// Three generations of the upstream cartera API are still in the wild, each
// with its own field names. This is the single consolidated alias table:
// keys are canonical forms (lowercased alphanumerics only), so SALDO,
// saldo_total and Saldo-Total all resolve through the same entry.
var (
	overdueAliases  = []string{"saldovencido", "valorvencido", "vencido", "totalvencido"}
	currentAliases  = []string{"saldoporvencer", "porvencer", "saldocorriente", "valorcorriente", "sinvencer"}
	balanceAliases  = []string{"saldo", "saldototal", "valorsaldo", "saldodocumento", "valor"}
	daysAliases     = []string{"diasvencido", "diasvencidos", "daiaven", "diasmora", "dias"}
	documentAliases = []string{"documento", "numerodocumento", "nrodocumento", "numdoc", "docto", "factura"}
	prefixAliases   = []string{"prefijo", "tipodoc", "tipodocumento"}
	issuedAliases   = []string{"fechaemision", "femision", "fecha"}
	dueAliases      = []string{"fechavencimiento", "fvencimiento", "vence"}
	cupoAliases     = []string{"cupo", "cupocredito", "cupoaprobado", "limitecredito"}
)

// Contribution is one raw document reconciled into canonical form, split
// into the single summary bucket it belongs to.
type Contribution struct {
	Item           domain.NormalizedLineItem
	Overdue        int64
	Current        int64
	CreditLimit    int64
	HasCreditLimit bool
}

// NormalizeItem maps one raw upstream document onto a Contribution.
//
// Resolution order: explicitly bucketed overdue/current amounts win when any
// of their aliases is present (no date inference needed); otherwise a single
// balance is routed into the overdue bucket when days-overdue is positive,
// into the current bucket otherwise. A credit-limit alias, when present,
// is carried along for last-seen-wins aggregation.
func NormalizeItem(raw domain.RawLineItem) Contribution {
	idx := canonIndex(raw)

	days := int(Truncate(ParseAmount(lookup(idx, daysAliases))))

	c := Contribution{
		Item: domain.NormalizedLineItem{
			DocumentNumber: asString(lookup(idx, documentAliases)),
			DocumentPrefix: asString(lookup(idx, prefixAliases)),
			DaysOverdue:    days,
			IssueDate:      asString(lookup(idx, issuedAliases)),
			DueDate:        asString(lookup(idx, dueAliases)),
		},
	}

	overdueRaw, hasOverdue := lookupPresent(idx, overdueAliases)
	currentRaw, hasCurrent := lookupPresent(idx, currentAliases)
	if hasOverdue || hasCurrent {
		c.Overdue = Truncate(ParseAmount(overdueRaw))
		c.Current = Truncate(ParseAmount(currentRaw))
	} else {
		balance := Truncate(ParseAmount(lookup(idx, balanceAliases)))
		if days > 0 {
			c.Overdue = balance
		} else {
			c.Current = balance
		}
	}
	c.Item.Balance = c.Overdue + c.Current

	if cupoRaw, ok := lookupPresent(idx, cupoAliases); ok {
		c.CreditLimit = Truncate(ParseAmount(cupoRaw))
		c.HasCreditLimit = true
	}

	return c
}

// canonKey reduces a field name to lowercased alphanumerics, so lookup
// tolerates inconsistent upstream casing and underscoring.
func canonKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

func canonIndex(raw domain.RawLineItem) map[string]any {
	idx := make(map[string]any, len(raw))
	for k, v := range raw {
		key := canonKey(k)
		if _, exists := idx[key]; !exists {
			idx[key] = v
		}
	}
	return idx
}

func lookup(idx map[string]any, aliases []string) any {
	v, _ := lookupPresent(idx, aliases)
	return v
}

func lookupPresent(idx map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := idx[a]; ok {
			return v, true
		}
	}
	return nil, false
}

// ParseAmount converts a noisy upstream value to a float. For strings,
// every character that is not a digit, a minus sign, or a period is
// stripped before parsing. Unparsable or empty input yields 0, never an
// error: a bad balance must not fail the batch.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' || r == '-' || r == '.' {
				return r
			}
			return -1
		}, n)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return ParseAmount(asString(v))
	}
}

// Truncate drops the fractional part toward zero. The upstream currency
// has no subunits in practice.
func Truncate(f float64) int64 {
	return int64(f)
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; document numbers are integral.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
