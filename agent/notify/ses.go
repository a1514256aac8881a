package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sesv2types "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

// Config is read with the SES prefix.
type Config struct {
	Region      string `default:"us-east-1"`
	SourceEmail string `split_words:"true" validate:"omitempty,email"`
}

type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers plain-text email through Amazon SES.
type SESSender struct {
	client emailSender
	source string
}

func NewSESSender(ctx context.Context, cfg Config) (*SESSender, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, errors.New("missing region")
	}
	if strings.TrimSpace(cfg.SourceEmail) == "" {
		return nil, errors.New("missing source email")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg.SourceEmail), nil
}

func newSESSender(client emailSender, source string) *SESSender {
	return &SESSender{client: client, source: source}
}

func (s *SESSender) Send(ctx context.Context, email Email) error {
	if strings.TrimSpace(email.To) == "" {
		return errors.New("missing recipient")
	}
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.source),
		Destination: &sesv2types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &sesv2types.EmailContent{
			Simple: &sesv2types.Message{
				Subject: &sesv2types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
				Body: &sesv2types.Body{
					Text: &sesv2types.Content{Data: aws.String(email.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Ctx(ctx).Debug().
		Str("message_id", aws.ToString(out.MessageId)).
		Str("subject", email.Subject).
		Msg("email sent")
	return nil
}
