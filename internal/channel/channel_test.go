package channel

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/logger"
)

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestSNSSendSuccess(t *testing.T) {
	var captured *sns.PublishInput
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
		},
	}
	sender := NewSNSSMSSenderWithClient(mock, "NOTIFY", logger.NewTestLogger(t))

	res, err := sender.Send(context.Background(), "+18136414177", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-123", res.ProviderID)
	assert.False(t, res.SentAt.IsZero())

	require.NotNil(t, captured)
	assert.Equal(t, "+18136414177", aws.ToString(captured.PhoneNumber))
	assert.Equal(t, "hello", aws.ToString(captured.Message))
	require.Contains(t, captured.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "NOTIFY", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestSNSSendWithoutSenderID(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Empty(t, params.MessageAttributes)
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		},
	}
	sender := NewSNSSMSSenderWithClient(mock, "", logger.NewTestLogger(t))

	_, err := sender.Send(context.Background(), "+15551234567", "hi")
	require.NoError(t, err)
}

func TestSNSSendFailure(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, fmt.Errorf("throttled")
		},
	}
	sender := NewSNSSMSSenderWithClient(mock, "", logger.NewTestLogger(t))

	_, err := sender.Send(context.Background(), "+15551234567", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHANNEL_SEND_FAILED")
}

func TestSNSSendNotConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifications.SMS.Enabled = false
	sender, err := NewSNSSMSSender(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), "+15551234567", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHANNEL_NOT_CONFIGURED")
}

func TestSESSendSuccess(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("ses-456")}, nil
		},
	}
	sender := NewSESEmailSenderWithClient(mock, "noreply@example.com", logger.NewTestLogger(t))

	res, err := sender.Send(context.Background(), "bob@example.com", "Lunch", "noon works?")
	require.NoError(t, err)
	assert.Equal(t, "ses-456", res.ProviderID)

	require.NotNil(t, captured)
	assert.Equal(t, []string{"bob@example.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "Lunch", aws.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "noon works?", aws.ToString(captured.Message.Body.Text.Data))
	assert.Equal(t, "noreply@example.com", aws.ToString(captured.Source))
}

func TestSESSendFailure(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, fmt.Errorf("address not verified")
		},
	}
	sender := NewSESEmailSenderWithClient(mock, "noreply@example.com", logger.NewTestLogger(t))

	_, err := sender.Send(context.Background(), "bob@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHANNEL_SEND_FAILED")
}

func TestSESSendNotConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifications.Email.Enabled = false
	sender, err := NewSESEmailSender(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = sender.Send(context.Background(), "bob@example.com", "s", "b")
	require.Error(t, err)
}

func TestSMTPBuildMessage(t *testing.T) {
	s := &SMTPEmailSender{
		fromEmail: "noreply@example.com",
		fromName:  "Smart Notify",
	}
	msg := s.buildMessage("bob@example.com", "Hello", "body text")

	assert.Contains(t, msg, "From: Smart Notify <noreply@example.com>\r\n")
	assert.Contains(t, msg, "To: bob@example.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "\r\n\r\nbody text")
}

func TestSMTPSendNotConfigured(t *testing.T) {
	cfg := &config.Config{}
	sender := NewSMTPEmailSender(cfg, logger.NewTestLogger(t))

	_, err := sender.Send(context.Background(), "bob@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHANNEL_NOT_CONFIGURED")
}
