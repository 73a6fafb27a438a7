// internal/models/offer.go
package models

// Offer is the per-customer pre-approval record. Exactly one row may exist
// per external customer id; absence is a valid, meaningful state.
type Offer struct {
	ClientID          string `dynamodbav:"clientId" json:"clientId"`
	StatusPreapproved *int   `dynamodbav:"StatusPreapproved" json:"StatusPreapproved,omitempty"`
	StatusApp         string `dynamodbav:"statusApp" json:"statusApp,omitempty"`
}

// StatusAppUnset is the sentinel the offer subsystem writes before a client
// has ever opened the application.
const StatusAppUnset = "U"

// Pre-approval status codes. CodePreapprovedLegacy is a legacy alias whose
// catalog entry lives under CodePreapprovedCurrent.
const (
	CodePreapprovedCurrent = 2
	CodePreapprovedLegacy  = 5
)

// StatusCatalogEntry maps a numeric pre-approval code to its label.
// The catalog is a static reference table, read-only for this core.
type StatusCatalogEntry struct {
	StatusID    int    `dynamodbav:"StatusID" json:"StatusID"`
	Description string `dynamodbav:"Description" json:"Description"`
}

// DescriptionOffer is the catalog label that marks a plain standing offer.
const DescriptionOffer = "Oferta"
