// internal/alerting/digest_test.go
package alerting

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segment-insights/internal/common/config"
	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/records"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, input)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, input)
	return &sns.PublishOutput{}, m.err
}

func buildEngine(t *testing.T, rows []map[string]interface{}) *analytics.Engine {
	t.Helper()

	table := &records.RawTable{
		Columns: []string{"customer_id", "recency", "frequency", "monetary", "segment"},
		Rows:    rows,
	}
	set, err := records.NewPreparer(logger.NewTestLogger(t)).Prepare(table)
	require.NoError(t, err)
	return analytics.New(set)
}

// One of two customers in segment 0 sits past the critical recency
// boundary, so the segment is flagged.
func riskyEngine(t *testing.T) *analytics.Engine {
	t.Helper()
	return buildEngine(t, []map[string]interface{}{
		{"customer_id": "A", "recency": 200.0, "frequency": 1.0, "monetary": 50.0, "segment": 0},
		{"customer_id": "B", "recency": 10.0, "frequency": 4.0, "monetary": 400.0, "segment": 0},
	})
}

func healthyEngine(t *testing.T) *analytics.Engine {
	t.Helper()
	return buildEngine(t, []map[string]interface{}{
		{"customer_id": "A", "recency": 5.0, "frequency": 4.0, "monetary": 400.0, "segment": 0},
		{"customer_id": "B", "recency": 10.0, "frequency": 2.0, "monetary": 100.0, "segment": 0},
	})
}

func digestConfig(email, sms bool) config.AlertingConfig {
	var cfg config.AlertingConfig
	cfg.Enabled = true
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "alerts@example.com"
	cfg.Email.ToEmails = []string{"growth@example.com"}
	cfg.SMS.Enabled = sms
	cfg.SMS.PhoneNumbers = []string{"+15550100"}
	return cfg
}

func TestRun_SkipsWhenNoHighChurn(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	d := NewDigest(digestConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	require.NoError(t, d.Run(context.Background(), healthyEngine(t)))
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestRun_SendsEmailAndSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	d := NewDigest(digestConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	require.NoError(t, d.Run(context.Background(), riskyEngine(t)))

	require.Len(t, sesMock.inputs, 1)
	email := sesMock.inputs[0]
	assert.Equal(t, "alerts@example.com", *email.Source)
	assert.Equal(t, []string{"growth@example.com"}, email.Destination.ToAddresses)
	assert.Contains(t, *email.Message.Subject.Data, "critical risk")
	assert.Contains(t, *email.Message.Body.Text.Data, "CUSTOMER SEGMENTATION ANALYSIS REPORT")

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550100", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "segments [0]")
}

func TestRun_EmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	d := NewDigest(digestConfig(true, false), sesMock, snsMock, logger.NewTestLogger(t))

	require.NoError(t, d.Run(context.Background(), riskyEngine(t)))
	assert.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs)
}

func TestRun_DeliveryFailure(t *testing.T) {
	sesMock := &mockSES{err: fmt.Errorf("throttled")}
	snsMock := &mockSNS{}
	d := NewDigest(digestConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	err := d.Run(context.Background(), riskyEngine(t))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlertDeliveryFailed, errors.CodeOf(err))

	// The SMS channel still went out.
	assert.Len(t, snsMock.inputs, 1)
}
