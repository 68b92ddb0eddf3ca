package cartera_test

import (
	"testing"

	"github.com/madecentro/cartera-bfa-go/internal/cartera"
	"github.com/madecentro/cartera-bfa-go/internal/domain"
)

func TestFormatCOP(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1234567, "$1.234.567 COP"},
		{0, "$0 COP"},
		{150000, "$150.000 COP"},
		{999, "$999 COP"},
	}
	for _, c := range cases {
		if got := cartera.FormatCOP(c.in); got != c.want {
			t.Errorf("FormatCOP(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	got := cartera.FormatSummary(domain.CarteraSummary{
		TotalBalance:    150000,
		CurrentBalance:  100000,
		OverdueBalance:  50000,
		CreditLimit:     1000000,
		AvailableCredit: 850000,
	})

	if got.TotalBalance != "$150.000 COP" {
		t.Errorf("total: got %q", got.TotalBalance)
	}
	if got.CurrentBalance != "$100.000 COP" {
		t.Errorf("current: got %q", got.CurrentBalance)
	}
	if got.OverdueBalance != "$50.000 COP" {
		t.Errorf("overdue: got %q", got.OverdueBalance)
	}
	if got.CreditLimit != "$1.000.000 COP" {
		t.Errorf("cupo: got %q", got.CreditLimit)
	}
	if got.AvailableCredit != "$850.000 COP" {
		t.Errorf("available: got %q", got.AvailableCredit)
	}
}
