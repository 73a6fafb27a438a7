// internal/notify/notify.go

// Package notify queues outbound SMS rows and pushes operational alerts.
// SMS delivery itself happens in a separate worker; this core only appends
// fully-defaulted rows to the queue table.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/models"
)

// CountryParaguay is the only country the template catalog currently holds.
const CountryParaguay = "PRY"

const timestampLayout = "2006-01-02T15:04:05"

// SMSStore is the slice of the lending store the registrar needs.
type SMSStore interface {
	FindSMSTemplate(ctx context.Context, templateID, country string) (*models.SMSTemplate, error)
	AppendClientSMS(ctx context.Context, row models.ClientSMS) bool
}

// SMSRequest carries the caller-supplied part of a queued SMS.
type SMSRequest struct {
	ClientID    string                 `json:"client_id"`
	PhoneNumber string                 `json:"phone_number"`
	TemplateID  string                 `json:"sms_template_id"`
	MaxRetries  int                    `json:"max_retries"`
	DateToSend  string                 `json:"date_to_send,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// Registrar appends SMS rows to the delivery queue.
type Registrar struct {
	store  SMSStore
	cfg    config.NotificationConfig
	logger logger.Logger
	now    func() time.Time
}

func NewRegistrar(store SMSStore, cfg config.NotificationConfig, log logger.Logger) *Registrar {
	return &Registrar{
		store:  store,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "sms-registrar"}),
		now:    time.Now,
	}
}

// RegisterClientSMS queues one SMS. The queued row starts in the Pending
// state with zero retries; the emitter application comes from the template
// catalog, not from the caller.
func (r *Registrar) RegisterClientSMS(ctx context.Context, req SMSRequest) bool {
	if !r.cfg.SMS.Enabled {
		r.logger.Info("sms dispatch disabled, dropping registration", map[string]interface{}{
			"clientId":   req.ClientID,
			"templateId": req.TemplateID,
		})
		return false
	}

	template, err := r.store.FindSMSTemplate(ctx, req.TemplateID, CountryParaguay)
	if err != nil {
		r.logger.Error("sms template lookup failed", map[string]interface{}{
			"templateId": req.TemplateID,
			"error":      err,
		})
		return false
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = r.cfg.SMS.MaxRetries
	}

	row := models.ClientSMS{
		SMSID:         uuid.NewString(),
		ClientID:      req.ClientID,
		PhoneNumber:   req.PhoneNumber,
		SMSTemplateID: req.TemplateID,
		EmitterApp:    template.EmitterApp,
		SMSStatus:     models.SMSStatusPending,
		SMSResponse:   models.SMSNoError,
		SentDate:      models.SMSNotSent,
		Retries:       0,
		MaxRetries:    maxRetries,
		CreatedDate:   r.now().Format(timestampLayout),
		DateToSend:    req.DateToSend,
		Params:        req.Params,
	}

	if !r.store.AppendClientSMS(ctx, row) {
		r.logger.Error("failed to queue sms row", map[string]interface{}{
			"clientId":   req.ClientID,
			"templateId": req.TemplateID,
		})
		return false
	}

	r.logger.Info("sms queued", map[string]interface{}{
		"smsId":      row.SMSID,
		"clientId":   req.ClientID,
		"templateId": req.TemplateID,
	})
	return true
}
