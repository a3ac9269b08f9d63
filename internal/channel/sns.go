package channel

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"golang.org/x/time/rate"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
)

// SNSService is the subset of the SNS client used here, extracted for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSMSSender delivers SMS through AWS SNS.
type SNSSMSSender struct {
	client   SNSService
	senderID string
	limiter  *rate.Limiter
	logger   logger.Logger
}

func NewSNSSMSSender(ctx context.Context, cfg *config.Config, log logger.Logger) (*SNSSMSSender, error) {
	s := &SNSSMSSender{
		senderID: cfg.Notifications.SMS.SenderID,
		logger:   log.With(map[string]interface{}{"channel": string(ChannelSMS)}),
	}

	if !cfg.Notifications.SMS.Enabled {
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifications.AWS.Region))
	if err != nil {
		return nil, err
	}
	s.client = sns.NewFromConfig(awsCfg)
	s.limiter = rate.NewLimiter(rate.Limit(cfg.Notifications.SMS.RatePerSecond), 1)
	return s, nil
}

// NewSNSSMSSenderWithClient injects a prebuilt client, used by tests.
func NewSNSSMSSenderWithClient(client SNSService, senderID string, log logger.Logger) *SNSSMSSender {
	return &SNSSMSSender{
		client:   client,
		senderID: senderID,
		logger:   log.With(map[string]interface{}{"channel": string(ChannelSMS)}),
	}
}

func (s *SNSSMSSender) Send(ctx context.Context, to, body string) (*SendResult, error) {
	if s.client == nil {
		return nil, errors.NewChannelNotConfiguredError(string(ChannelSMS))
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.NewChannelSendFailedError(string(ChannelSMS), err)
		}
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(body),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		s.logger.Error("SMS send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
		return nil, errors.NewChannelSendFailedError(string(ChannelSMS), err)
	}

	return &SendResult{
		ProviderID: aws.ToString(out.MessageId),
		SentAt:     time.Now().UTC(),
	}, nil
}
