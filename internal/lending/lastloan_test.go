// internal/lending/lastloan_test.go
package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-backend/internal/models"
)

func datedLoan(status, created string) models.LoanRecord {
	return models.LoanRecord{"Status": status, "CreatedDate": created}
}

func TestLastLoan_SkipsRejectedAndClosed(t *testing.T) {
	loans := []models.LoanRecord{
		datedLoan("ACTIVE", "2024-01-10T09:00:00"),
		datedLoan("CLOSED", "2024-06-01T09:00:00"),
		datedLoan("REJECTED", "2024-07-01T09:00:00"),
	}

	last := LastLoan(loans, false)
	require.NotNil(t, last)
	assert.Equal(t, "ACTIVE", last["Status"])
}

func TestLastLoan_AllLoansIncludesEveryStatus(t *testing.T) {
	loans := []models.LoanRecord{
		datedLoan("ACTIVE", "2024-01-10T09:00:00"),
		datedLoan("REJECTED", "2024-07-01T09:00:00"),
	}

	last := LastLoan(loans, true)
	require.NotNil(t, last)
	assert.Equal(t, "REJECTED", last["Status"])
}

func TestLastLoan_OrdersByCreatedDateNotStoreOrder(t *testing.T) {
	loans := []models.LoanRecord{
		datedLoan("LATE", "2024-05-01T09:00:00"),
		datedLoan("ACTIVE", "2024-02-01T09:00:00"),
	}

	last := LastLoan(loans, false)
	require.NotNil(t, last)
	assert.Equal(t, "LATE", last["Status"])
}

func TestLastLoan_NothingLeftReturnsNil(t *testing.T) {
	loans := []models.LoanRecord{
		datedLoan("CLOSED", "2024-01-10T09:00:00"),
	}

	assert.Nil(t, LastLoan(loans, false))
	assert.Nil(t, LastLoan(nil, false))
}
