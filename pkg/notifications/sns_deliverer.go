package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// ErrSNSPublish is returned when the SNS publish call fails.
var ErrSNSPublish = errors.New("failed to publish notification to sns")

// maxSubjectLen is the SNS limit for the Subject field.
const maxSubjectLen = 100

// SNSConfig configures the push mirror.
type SNSConfig struct {
	TopicARN    string   `env:"SNS_TOPIC_ARN"`
	Region      string   `env:"SNS_REGION" envDefault:"us-east-1"`
	MinPriority Priority `env:"SNS_MIN_PRIORITY" envDefault:"high"`
}

// SNSPublisher is the part of the SNS client the deliverer uses.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSDeliverer publishes notifications at or above a priority to an SNS topic,
// where mobile push and SMS subscriptions pick them up.
type SNSDeliverer struct {
	client      SNSPublisher
	topicARN    string
	minPriority Priority
}

// NewSNSDeliverer creates a deliverer publishing to topicARN.
func NewSNSDeliverer(client SNSPublisher, topicARN string, minPriority Priority) *SNSDeliverer {
	if minPriority.Rank() == 0 {
		minPriority = PriorityHigh
	}
	return &SNSDeliverer{client: client, topicARN: topicARN, minPriority: minPriority}
}

// NewSNSDelivererFromConfig loads AWS credentials the default way and builds a deliverer.
func NewSNSDelivererFromConfig(ctx context.Context, cfg SNSConfig) (*SNSDeliverer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSDeliverer(sns.NewFromConfig(awsCfg), cfg.TopicARN, cfg.MinPriority), nil
}

func (d *SNSDeliverer) Deliver(ctx context.Context, notif Notification) error {
	if notif.Priority.Rank() < d.minPriority.Rank() {
		return nil
	}

	_, err := d.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.topicARN),
		Subject:  aws.String(truncate(notif.Title, maxSubjectLen)),
		Message:  aws.String(notif.Message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"userId":   stringAttr(notif.UserID),
			"kind":     stringAttr(string(notif.Kind)),
			"priority": stringAttr(string(notif.Priority)),
		},
	})
	if err != nil {
		return errors.Join(ErrSNSPublish, err)
	}
	return nil
}

func (d *SNSDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	var errs []error
	for _, n := range notifs {
		if err := d.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
