// internal/models/notification.go
package models

// ClientSMS is a queued SMS row. A delivery worker outside this repository
// drains the queue; this core only appends.
type ClientSMS struct {
	SMSID         string                 `dynamodbav:"SMSID" json:"SMSID"`
	ClientID      string                 `dynamodbav:"ClientId" json:"ClientId"`
	PhoneNumber   string                 `dynamodbav:"PhoneNumber" json:"PhoneNumber"`
	SMSTemplateID string                 `dynamodbav:"SmsTemplateId" json:"SmsTemplateId"`
	EmitterApp    string                 `dynamodbav:"EmitterApp" json:"EmitterApp"`
	SMSStatus     string                 `dynamodbav:"SmsStatus" json:"SmsStatus"`
	SMSResponse   string                 `dynamodbav:"SmsResponse" json:"SmsResponse"`
	SentDate      string                 `dynamodbav:"SentDate" json:"SentDate"`
	Retries       int                    `dynamodbav:"Retries" json:"Retries"`
	MaxRetries    int                    `dynamodbav:"MaxRetries" json:"MaxRetries"`
	CreatedDate   string                 `dynamodbav:"CreatedDate" json:"CreatedDate"`
	DateToSend    string                 `dynamodbav:"DateToSend" json:"DateToSend,omitempty"`
	Params        map[string]interface{} `dynamodbav:"Params,omitempty" json:"Params,omitempty"`
}

// SMS queue states.
const (
	SMSStatusPending = "Pending"
	SMSNotSent       = "not sent"
	SMSNoError       = "No error"
)

// SMSTemplate is a static template row keyed by template id and country.
type SMSTemplate struct {
	SMSID      string `dynamodbav:"SMSId" json:"SMSId"`
	Country    string `dynamodbav:"Country" json:"Country"`
	EmitterApp string `dynamodbav:"EmitterApp" json:"EmitterApp"`
	Body       string `dynamodbav:"Body" json:"Body,omitempty"`
}

// Agent is a cash-point row used for pickup directions in SMS copy.
type Agent struct {
	AgentCode        string `dynamodbav:"AgentCode" json:"AgentCode"`
	AgentFantasyName string `dynamodbav:"AgentFantasyName" json:"AgentFantasyName"`
}
