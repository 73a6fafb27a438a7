// internal/lending/access.go
package lending

import (
	"context"
	"strconv"

	"lending-backend/internal/common/logger"
	"lending-backend/internal/common/metrics"
	"lending-backend/internal/models"
)

// Front-end flow identifiers. The literal values are part of the API
// contract and must not change.
const (
	FlowDashboard  = "dashboard"
	FlowOnboarding = "onboarding"
)

// Error strings surfaced in the access result. Part of the API contract.
const (
	errInvalidInput              = "invalid input"
	errOfferNotFound             = "Offer not found"
	errStatusPreapprovedNotFound = "Status preapproved not found"
)

// AccessResult is the flat decision mapping returned to the boundary
// layer. Field names and literal values are a compatibility contract.
type AccessResult struct {
	Success           bool              `json:"success"`
	Error             string            `json:"error"`
	StatusPreapproved int               `json:"status_preapproved"`
	Flow              string            `json:"flow"`
	CurrentLoan       models.LoanRecord `json:"current_loan"`
	StatusApp         string            `json:"status_app"`
	TotalLoans        int               `json:"total_loans"`
	Access            bool              `json:"access"`
	IsRecurrent       bool              `json:"is_recurrent"`
}

func defaultAccessResult() AccessResult {
	return AccessResult{
		Flow:      FlowDashboard,
		StatusApp: models.StatusAppUnset,
	}
}

// statusPreDisbursement marks loans that never reached disbursement; a
// single loan in one of these states sends the client back to onboarding.
var statusPreDisbursement = map[models.LoanStatus]bool{
	models.LoanStatusInProcess: true,
	models.LoanStatusRejected:  true,
}

// statusCurrentCandidates marks loan states that qualify as the client's
// current loan when several exist. CLOSED and unrecognized values are
// excluded.
var statusCurrentCandidates = map[models.LoanStatus]bool{
	models.LoanStatusInProcess: true,
	models.LoanStatusRejected:  true,
	models.LoanStatusActive:    true,
	models.LoanStatusLate:      true,
	models.LoanStatusExpired:   true,
}

// statusRecurrentSet marks current-loan states under which a dashboard
// client with an exercised offer counts as recurrent.
var statusRecurrentSet = map[models.LoanStatus]bool{
	models.LoanStatusInProcess: true,
	models.LoanStatusClosed:    true,
	models.LoanStatusRejected:  true,
}

// AccessStore is the slice of the lending store the resolver reads.
type AccessStore interface {
	FindLoansByClient(ctx context.Context, clientID string) ([]models.LoanRecord, error)
	FindOfferByClient(ctx context.Context, customerID string) (*models.Offer, error)
	FindStatusByID(ctx context.Context, statusID int) (*models.StatusCatalogEntry, error)
}

// AccessResolver decides whether a client may enter the application and
// which flow the front end shows first.
type AccessResolver struct {
	store  AccessStore
	logger logger.Logger
}

func NewAccessResolver(store AccessStore, log logger.Logger) *AccessResolver {
	return &AccessResolver{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "access-resolver"}),
	}
}

// ValidateAccess reconciles the client's loans, offer and the status
// catalog into one access decision.
//
// The contract is best-effort: no failure propagates to the caller. Every
// exit returns a structurally complete result and callers inspect the
// success/error fields. Store calls run strictly in sequence (loans,
// offer, status); latency is additive.
func (r *AccessResolver) ValidateAccess(ctx context.Context, clientID, customerID string) AccessResult {
	result := defaultAccessResult()

	if clientID == "" || customerID == "" {
		r.logger.Error("access validation input incomplete", map[string]interface{}{
			"clientId":   clientID,
			"customerId": customerID,
		})
		result.Error = errInvalidInput
		return result
	}

	result, ok := r.evaluateLoans(ctx, clientID, result)
	if !ok {
		return r.finish(result)
	}

	result = r.evaluateOffer(ctx, customerID, result)
	return r.finish(result)
}

// evaluateLoans is Step A: classify the client by loan history. The second
// return is false when the loan lookup failed and Step B must not run.
func (r *AccessResolver) evaluateLoans(ctx context.Context, clientID string, result AccessResult) (AccessResult, bool) {
	loans, err := r.store.FindLoansByClient(ctx, clientID)
	if err != nil {
		// A failed loan lookup aborts with the default failure result;
		// the boundary layer still gets a well-formed response.
		r.logger.Error("loan lookup failed", map[string]interface{}{
			"clientId": clientID,
			"error":    err,
		})
		return defaultAccessResult(), false
	}

	switch {
	case len(loans) == 0:
		result.Flow = FlowOnboarding

	case len(loans) == 1:
		loan := loans[0]
		result.TotalLoans = 1
		result.CurrentLoan = loan
		if statusPreDisbursement[models.LoanStatusOf(loan)] {
			result.Flow = FlowOnboarding
		} else {
			result.Access = true
		}

	default:
		result.Access = true
		result.Success = true
		result.TotalLoans = len(loans)

		// Fold over the store order keeping the LAST qualifying loan;
		// later matches overwrite earlier ones.
		for _, loan := range loans {
			if statusCurrentCandidates[models.LoanStatusOf(loan)] {
				result.CurrentLoan = loan
			}
		}
		if result.CurrentLoan == nil {
			result.CurrentLoan = loans[len(loans)-1]
		}
	}

	return result, true
}

// evaluateOffer is Step B: fold the offer and status catalog into the
// decision accumulated so far.
func (r *AccessResolver) evaluateOffer(ctx context.Context, customerID string, result AccessResult) AccessResult {
	offer, err := r.store.FindOfferByClient(ctx, customerID)
	if err != nil || offer == nil {
		// Absence and lookup failure collapse to the same outcome; the
		// success flag keeps whatever Step A decided.
		result.Error = errOfferNotFound
		return result
	}

	if offer.StatusPreapproved == nil {
		return result
	}
	rawStatus := *offer.StatusPreapproved

	// Legacy code 5 resolves its catalog entry under code 2; only the
	// lookup is remapped.
	lookupCode := rawStatus
	if lookupCode == models.CodePreapprovedLegacy {
		lookupCode = models.CodePreapprovedCurrent
	}

	entry, err := r.store.FindStatusByID(ctx, lookupCode)
	if err != nil || entry == nil {
		result.Error = errStatusPreapprovedNotFound
		return result
	}

	statusCurrentLoan := models.LoanStatusUnrecognized
	if result.CurrentLoan != nil {
		statusCurrentLoan = models.LoanStatusOf(result.CurrentLoan)
	}
	recurrentCandidate := result.Flow == FlowDashboard && statusRecurrentSet[statusCurrentLoan]

	if offer.StatusApp == models.StatusAppUnset && entry.Description == models.DescriptionOffer {
		if recurrentCandidate {
			result.StatusPreapproved = models.CodePreapprovedLegacy
		}
	} else {
		if recurrentCandidate {
			result.IsRecurrent = true
		}
		result.Access = true
		result.StatusApp = offer.StatusApp
	}

	if result.StatusPreapproved != models.CodePreapprovedLegacy {
		result.StatusPreapproved = rawStatus
	}

	result.Success = true
	return result
}

func (r *AccessResolver) finish(result AccessResult) AccessResult {
	metrics.AccessDecisions.WithLabelValues(result.Flow, strconv.FormatBool(result.Access)).Inc()

	r.logger.Info("access decision", map[string]interface{}{
		"success":     result.Success,
		"flow":        result.Flow,
		"access":      result.Access,
		"totalLoans":  result.TotalLoans,
		"isRecurrent": result.IsRecurrent,
		"error":       result.Error,
	})
	return result
}
