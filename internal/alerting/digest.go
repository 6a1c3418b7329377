// internal/alerting/digest.go
package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"segment-insights/internal/common/config"
	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/metrics"
	"segment-insights/internal/engine/analytics"
)

// Interfaces for mocking the AWS clients in tests.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Digest delivers the scheduled churn digest over email and SMS. It
// only fires when at least one segment carries high churn exposure.
type Digest struct {
	config    config.AlertingConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewDigest(cfg config.AlertingConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Digest {
	return &Digest{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger: log.With(map[string]interface{}{
			"component": "alerting",
		}),
	}
}

// Run evaluates the churn report and sends the digest when any segment
// is flagged high risk. A clean report sends nothing.
func (d *Digest) Run(ctx context.Context, engine *analytics.Engine) error {
	churn := engine.ChurnReport()
	if len(churn.HighChurnSegments) == 0 {
		d.logger.Info("no high churn segments, digest skipped", nil)
		return nil
	}

	subject := fmt.Sprintf("Churn digest: %d segment(s) at critical risk", len(churn.HighChurnSegments))
	body := d.buildBody(engine)
	short := fmt.Sprintf("Churn alert: segments %v have >30%% of customers at critical churn risk.",
		churn.HighChurnSegments)

	var failures []string
	if d.config.Email.Enabled {
		if err := d.sendEmail(ctx, subject, body); err != nil {
			d.logger.Error("digest email failed", map[string]interface{}{
				"error": err.Error(),
			})
			failures = append(failures, "email")
		} else {
			metrics.AlertsSentTotal.WithLabelValues("email").Inc()
		}
	}
	if d.config.SMS.Enabled {
		if err := d.sendSMS(ctx, short); err != nil {
			d.logger.Error("digest SMS failed", map[string]interface{}{
				"error": err.Error(),
			})
			failures = append(failures, "sms")
		} else {
			metrics.AlertsSentTotal.WithLabelValues("sms").Inc()
		}
	}

	if len(failures) > 0 {
		return errors.NewAlertDeliveryFailedError(strings.Join(failures, ","),
			fmt.Errorf("%d channel(s) failed", len(failures)))
	}
	return nil
}

func (d *Digest) buildBody(engine *analytics.Engine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated churn digest, generated %s.\n",
		time.Now().UTC().Format(time.RFC3339))
	b.WriteString(engine.GroundingReport())
	return b.String()
}

func (d *Digest) sendEmail(ctx context.Context, subject, body string) error {
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: d.config.Email.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(d.config.Email.FromEmail),
	})
	return err
}

func (d *Digest) sendSMS(ctx context.Context, message string) error {
	for _, phone := range d.config.SMS.PhoneNumbers {
		input := &sns.PublishInput{
			PhoneNumber: aws.String(phone),
			Message:     aws.String(message),
		}
		if d.config.SMS.SenderID != "" {
			input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
				"AWS.SNS.SMS.SenderID": {
					DataType:    aws.String("String"),
					StringValue: aws.String(d.config.SMS.SenderID),
				},
			}
		}
		if _, err := d.snsClient.Publish(ctx, input); err != nil {
			return err
		}
	}
	return nil
}
