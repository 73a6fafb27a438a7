// internal/models/client.go
package models

// ClientRecord is the canonical identity row. Like loans it is schemaless in
// the store and passed through whole, so it is handled as a raw record.
type ClientRecord = map[string]interface{}

// ClientID returns the internal client uuid of a client record.
func ClientID(client ClientRecord) string {
	if client == nil {
		return ""
	}
	id, _ := client["ClientID"].(string)
	return id
}

// ClientMsisdn returns the stored phone number. The second return reports
// whether the attribute was present and non-null, which the reconciler
// distinguishes from an empty string.
func ClientMsisdn(client ClientRecord) (string, bool) {
	if client == nil {
		return "", false
	}
	raw, ok := client["Msisdn"]
	if !ok || raw == nil {
		return "", false
	}
	msisdn, ok := raw.(string)
	return msisdn, ok
}

// UpdatedCustomerAccount is the append-only audit row written for every
// phone repair. Rows are never updated or deleted.
type UpdatedCustomerAccount struct {
	ID         string `dynamodbav:"Id" json:"Id"`
	ClientID   string `dynamodbav:"ClientId" json:"ClientId"`
	OldMsisdn  string `dynamodbav:"OldMsisdn" json:"OldMsisdn"`
	NewMsisdn  string `dynamodbav:"NewMsisdn" json:"NewMsisdn"`
	UpdateDate string `dynamodbav:"UpdateDate" json:"UpdateDate"`
	Process    string `dynamodbav:"Process" json:"Process"`
}
