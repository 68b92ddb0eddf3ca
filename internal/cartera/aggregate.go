package cartera

import "github.com/madecentro/cartera-bfa-go/internal/domain"

// Summarize folds the reconciled contributions into summary totals.
// TotalBalance is built as OverdueBalance + CurrentBalance, so the bucket
// invariant holds exactly.
//
// The credit limit is last-seen-wins: the upstream repeats the same
// customer-level value on every line item. AvailableCredit is floored at
// zero — a customer over their limit has no available credit, not a
// negative one — and stays zero when no credit-limit field was seen at all.
func Summarize(contribs []Contribution) domain.CarteraSummary {
	var s domain.CarteraSummary
	var hasCupo bool

	for _, c := range contribs {
		s.OverdueBalance += c.Overdue
		s.CurrentBalance += c.Current
		if c.HasCreditLimit {
			s.CreditLimit = c.CreditLimit
			hasCupo = true
		}
	}
	s.TotalBalance = s.OverdueBalance + s.CurrentBalance
	s.DocumentCount = len(contribs)

	if hasCupo {
		if avail := s.CreditLimit - s.TotalBalance; avail > 0 {
			s.AvailableCredit = avail
		}
	}

	return s
}
