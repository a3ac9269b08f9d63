package channel

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
)

// SESService is the subset of the SES client used here, extracted for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESEmailSender delivers email through AWS SES.
type SESEmailSender struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewSESEmailSender(ctx context.Context, cfg *config.Config, log logger.Logger) (*SESEmailSender, error) {
	s := &SESEmailSender{
		fromEmail: cfg.Notifications.Email.FromEmail,
		logger:    log.With(map[string]interface{}{"channel": string(ChannelEmail)}),
	}

	if !cfg.Notifications.Email.Enabled {
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifications.AWS.Region))
	if err != nil {
		return nil, err
	}
	s.client = ses.NewFromConfig(awsCfg)
	return s, nil
}

// NewSESEmailSenderWithClient injects a prebuilt client, used by tests.
func NewSESEmailSenderWithClient(client SESService, fromEmail string, log logger.Logger) *SESEmailSender {
	return &SESEmailSender{
		client:    client,
		fromEmail: fromEmail,
		logger:    log.With(map[string]interface{}{"channel": string(ChannelEmail)}),
	}
}

func (s *SESEmailSender) Send(ctx context.Context, to, subject, body string) (*SendResult, error) {
	if s.client == nil {
		return nil, errors.NewChannelNotConfiguredError(string(ChannelEmail))
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
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
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
		return nil, errors.NewChannelSendFailedError(string(ChannelEmail), err)
	}

	return &SendResult{
		ProviderID: aws.ToString(out.MessageId),
		SentAt:     time.Now().UTC(),
	}, nil
}
