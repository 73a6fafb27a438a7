// internal/lending/access_test.go
package lending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-backend/internal/common/logger"
	"lending-backend/internal/models"
)

type fakeAccessStore struct {
	loans     []models.LoanRecord
	loansErr  error
	offer     *models.Offer
	offerErr  error
	statuses  map[int]*models.StatusCatalogEntry
	statusErr error

	statusLookups []int
}

func (f *fakeAccessStore) FindLoansByClient(context.Context, string) ([]models.LoanRecord, error) {
	return f.loans, f.loansErr
}

func (f *fakeAccessStore) FindOfferByClient(context.Context, string) (*models.Offer, error) {
	return f.offer, f.offerErr
}

func (f *fakeAccessStore) FindStatusByID(_ context.Context, statusID int) (*models.StatusCatalogEntry, error) {
	f.statusLookups = append(f.statusLookups, statusID)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statuses[statusID], nil
}

func loan(status string) models.LoanRecord {
	return models.LoanRecord{"Status": status}
}

func intPtr(v int) *int { return &v }

func offerWith(status int, statusApp string) *models.Offer {
	return &models.Offer{ClientID: "c-1", StatusPreapproved: intPtr(status), StatusApp: statusApp}
}

func approvedCatalog() map[int]*models.StatusCatalogEntry {
	return map[int]*models.StatusCatalogEntry{
		1: {StatusID: 1, Description: "Preaprobado"},
		2: {StatusID: 2, Description: "Oferta"},
	}
}

func newResolver(store *fakeAccessStore) *AccessResolver {
	return NewAccessResolver(store, logger.NewNoOpLogger())
}

func TestValidateAccess_MissingInputFailsFast(t *testing.T) {
	store := &fakeAccessStore{loans: []models.LoanRecord{loan("ACTIVE")}}
	resolver := newResolver(store)

	for _, tc := range []struct{ clientID, customerID string }{
		{"", "cust-1"},
		{"client-1", ""},
		{"", ""},
	} {
		result := resolver.ValidateAccess(context.Background(), tc.clientID, tc.customerID)

		assert.False(t, result.Success)
		assert.Equal(t, "invalid input", result.Error)
		assert.False(t, result.Access)
		assert.Equal(t, FlowDashboard, result.Flow)
		assert.Equal(t, 0, result.StatusPreapproved)
		assert.Nil(t, result.CurrentLoan)
		assert.Equal(t, "U", result.StatusApp)
		assert.Zero(t, result.TotalLoans)
		assert.False(t, result.IsRecurrent)
	}
	assert.Empty(t, store.statusLookups)
}

func TestValidateAccess_NoLoansGoesToOnboarding(t *testing.T) {
	store := &fakeAccessStore{
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Equal(t, FlowOnboarding, result.Flow)
	assert.Zero(t, result.TotalLoans)
	assert.True(t, result.Access)
	assert.True(t, result.Success)
}

func TestValidateAccess_SingleActiveLoanGrantsAccess(t *testing.T) {
	active := loan("ACTIVE")
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{active},
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.True(t, result.Access)
	assert.Equal(t, FlowDashboard, result.Flow)
	assert.Equal(t, 1, result.TotalLoans)
	assert.Equal(t, active, result.CurrentLoan)
}

func TestValidateAccess_SingleRejectedLoanGoesToOnboarding(t *testing.T) {
	rejected := loan("REJECTED")
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{rejected},
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Equal(t, FlowOnboarding, result.Flow)
	assert.Equal(t, rejected, result.CurrentLoan)
	assert.Equal(t, 1, result.TotalLoans)
}

func TestValidateAccess_CurrentLoanIsLastQualifyingMatch(t *testing.T) {
	rejected := loan("REJECTED")
	active := loan("ACTIVE")
	closed := loan("CLOSED")
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{rejected, active, closed},
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.True(t, result.Access)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalLoans)
	assert.Equal(t, active, result.CurrentLoan)
}

func TestValidateAccess_CurrentLoanFallsBackToLastElement(t *testing.T) {
	first := loan("CLOSED")
	last := models.LoanRecord{"Status": "CLOSED", "LoanID": float64(9)}
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{first, last},
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Equal(t, last, result.CurrentLoan)
}

func TestValidateAccess_LoanLookupFailureReturnsDefaultResult(t *testing.T) {
	store := &fakeAccessStore{
		loansErr: errors.New("store unavailable"),
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.False(t, result.Success)
	assert.False(t, result.Access)
	assert.Equal(t, FlowDashboard, result.Flow)
	assert.Empty(t, store.statusLookups, "offer evaluation must not run after a loan lookup failure")
}

func TestValidateAccess_MissingOfferKeepsStepAOutcome(t *testing.T) {
	t.Run("single loan keeps success false", func(t *testing.T) {
		store := &fakeAccessStore{loans: []models.LoanRecord{loan("ACTIVE")}}
		result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

		assert.Equal(t, "Offer not found", result.Error)
		assert.False(t, result.Success)
		assert.True(t, result.Access)
	})

	t.Run("multiple loans keep success true", func(t *testing.T) {
		store := &fakeAccessStore{loans: []models.LoanRecord{loan("ACTIVE"), loan("CLOSED")}}
		result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

		assert.Equal(t, "Offer not found", result.Error)
		assert.True(t, result.Success)
	})
}

func TestValidateAccess_LegacyCodeResolvesCatalogUnderCurrentCode(t *testing.T) {
	store := &fakeAccessStore{
		loans: []models.LoanRecord{loan("ACTIVE")},
		offer: offerWith(5, "A"),
		statuses: map[int]*models.StatusCatalogEntry{
			2: {StatusID: 2, Description: "Oferta"},
			5: {StatusID: 5, Description: "should never be read"},
		},
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	require.Equal(t, []int{2}, store.statusLookups)
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.StatusPreapproved)
}

func TestValidateAccess_MissingCatalogEntrySetsError(t *testing.T) {
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{loan("ACTIVE")},
		offer:    offerWith(3, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Equal(t, "Status preapproved not found", result.Error)
	assert.False(t, result.Success)
}

func TestValidateAccess_UnexercisedOfferOverridesStatusPreapproved(t *testing.T) {
	// Dashboard client with a closed current loan and a standing offer the
	// app has never shown: status_preapproved pinned to the legacy code.
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{loan("CLOSED"), loan("CLOSED")},
		offer:    offerWith(2, "U"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Equal(t, 5, result.StatusPreapproved)
	assert.True(t, result.Success)
	assert.Equal(t, "U", result.StatusApp)
	assert.False(t, result.IsRecurrent)
}

func TestValidateAccess_ExercisedOfferMarksRecurrent(t *testing.T) {
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{loan("CLOSED"), loan("CLOSED")},
		offer:    offerWith(1, "A"),
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.True(t, result.IsRecurrent)
	assert.True(t, result.Access)
	assert.Equal(t, "A", result.StatusApp)
	assert.Equal(t, 1, result.StatusPreapproved)
	assert.True(t, result.Success)
}

func TestValidateAccess_OfferWithoutStatusSkipsCatalog(t *testing.T) {
	store := &fakeAccessStore{
		loans:    []models.LoanRecord{loan("ACTIVE"), loan("CLOSED")},
		offer:    &models.Offer{ClientID: "c-1"},
		statuses: approvedCatalog(),
	}
	result := newResolver(store).ValidateAccess(context.Background(), "client-1", "cust-1")

	assert.Empty(t, store.statusLookups)
	assert.Empty(t, result.Error)
	assert.True(t, result.Success, "success carried over from the multi-loan branch")
}
