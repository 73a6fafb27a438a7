// internal/lending/lastloan.go
package lending

import (
	"sort"

	"lending-backend/internal/models"
)

// LastLoan returns the most recently created loan by CreatedDate. Unless
// allLoans is set, REJECTED and CLOSED loans are ignored first. Nil when
// nothing remains.
func LastLoan(loans []models.LoanRecord, allLoans bool) models.LoanRecord {
	candidates := loans
	if !allLoans {
		candidates = make([]models.LoanRecord, 0, len(loans))
		for _, loan := range loans {
			switch models.LoanStatusOf(loan) {
			case models.LoanStatusRejected, models.LoanStatusClosed:
			default:
				candidates = append(candidates, loan)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]models.LoanRecord, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return models.LoanCreatedDate(ordered[i]) < models.LoanCreatedDate(ordered[j])
	})
	return ordered[len(ordered)-1]
}
