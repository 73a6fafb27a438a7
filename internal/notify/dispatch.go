// internal/notify/dispatch.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/logger"
)

// Interfaces over the AWS clients so tests can substitute fakes.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Dispatcher pushes immediate notifications: direct SMS for time-critical
// flows that cannot wait for the queue worker, and email for operational
// alerts.
type Dispatcher struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewDispatcher(ctx context.Context, region string, cfg config.NotificationConfig, log logger.Logger) (*Dispatcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Dispatcher{
		cfg:       cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		logger:    log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}, nil
}

// NewDispatcherWithClients wires explicit service implementations, used by
// tests.
func NewDispatcherWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// SendDirectSMS publishes one SMS straight to the carrier, bypassing the
// queue table.
func (d *Dispatcher) SendDirectSMS(ctx context.Context, phone, message string) error {
	if !d.cfg.SMS.Enabled {
		return nil
	}
	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		d.logger.Error("SMS send failed", map[string]interface{}{
			"error": err,
			"phone": phone,
		})
	}
	return err
}

// SendAlertEmail mails the operations inbox.
func (d *Dispatcher) SendAlertEmail(ctx context.Context, to, subject, body string) error {
	if !d.cfg.Email.Enabled {
		return nil
	}
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(d.cfg.Email.FromEmail),
	})
	if err != nil {
		d.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
	}
	return err
}

// RenderTemplate substitutes {{key}} placeholders with values from data and
// strips any placeholder that has no value.
func RenderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
