package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
)

// CodeNotifier delivers verification codes over SMS via AWS SNS. Used instead
// of the email notifier when an account is addressed by phone number.
type CodeNotifier struct {
	client *sns.Client
}

func NewCodeNotifier(cfg *config.Config) (*CodeNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &CodeNotifier{client: sns.NewFromConfig(awsCfg)}, nil
}

func (n *CodeNotifier) Deliver(ctx context.Context, address, code string) error {
	message := "Your verification code is: " + code
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &address,
		Message:     &message,
	})
	if err != nil {
		return fmt.Errorf("publish sms to %s: %w", address, domain.ErrDeliveryFailed)
	}
	return nil
}
