package cartera

import (
	"github.com/madecentro/cartera-bfa-go/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Colombian pesos: dot-grouped thousands, no decimals.
var copPrinter = message.NewPrinter(language.Spanish)

// FormatCOP renders a whole-peso amount as the app displays it,
// e.g. 1234567 → "$1.234.567 COP".
func FormatCOP(v int64) string {
	return copPrinter.Sprintf("$%d COP", v)
}

// FormatSummary mirrors every summary field as a display string.
func FormatSummary(s domain.CarteraSummary) domain.FormattedSummary {
	return domain.FormattedSummary{
		TotalBalance:    FormatCOP(s.TotalBalance),
		CurrentBalance:  FormatCOP(s.CurrentBalance),
		OverdueBalance:  FormatCOP(s.OverdueBalance),
		CreditLimit:     FormatCOP(s.CreditLimit),
		AvailableCredit: FormatCOP(s.AvailableCredit),
	}
}
