// internal/models/loan.go
package models

// LoanStatus is the closed set of loan states known to the lending core.
// The store may carry values outside this set; those parse to
// LoanStatusUnrecognized and are tolerated rather than rejected.
type LoanStatus string

const (
	LoanStatusInProcess LoanStatus = "IN_PROCESS"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusClosed    LoanStatus = "CLOSED"
	LoanStatusLate      LoanStatus = "LATE"
	LoanStatusExpired   LoanStatus = "EXPIRED"
	LoanStatusRejected  LoanStatus = "REJECTED"

	LoanStatusUnrecognized LoanStatus = "UNRECOGNIZED"
)

// ParseLoanStatus maps a raw store value onto the closed enumeration.
func ParseLoanStatus(raw string) LoanStatus {
	switch LoanStatus(raw) {
	case LoanStatusInProcess, LoanStatusActive, LoanStatusClosed,
		LoanStatusLate, LoanStatusExpired, LoanStatusRejected:
		return LoanStatus(raw)
	default:
		return LoanStatusUnrecognized
	}
}

// Loan rows are schemaless in the store: alongside the keyed attributes they
// carry arbitrary business fields set by origination and payment flows, all
// of which must survive a round trip through this core. Loans are therefore
// handled as raw records with typed accessors.
type LoanRecord = map[string]interface{}

// LoanStatusOf extracts and parses the Status attribute of a loan record.
func LoanStatusOf(loan LoanRecord) LoanStatus {
	if loan == nil {
		return LoanStatusUnrecognized
	}
	raw, _ := loan["Status"].(string)
	return ParseLoanStatus(raw)
}

// LoanCreatedDate returns the CreatedDate attribute, empty when absent.
func LoanCreatedDate(loan LoanRecord) string {
	if loan == nil {
		return ""
	}
	created, _ := loan["CreatedDate"].(string)
	return created
}
