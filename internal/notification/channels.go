// internal/notification/channels.go
// Email and SMS delivery channels

package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

// EmailSender delivers a notification by email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a notification by SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SendGridEmailService sends email through SendGrid.
type SendGridEmailService struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridEmailService(apiKey, from string) *SendGridEmailService {
	return &SendGridEmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *SendGridEmailService) SendEmail(_ context.Context, to, subject, body string) error {
	from := mail.NewEmail("ZawajHub", s.from)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, body, body)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	return nil
}

// TwilioSMSService sends SMS through Twilio.
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSService(accountSID, authToken, from string) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMSService{client: client, from: from}
}

func (s *TwilioSMSService) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// MockEmailService logs instead of sending. For development and tests.
type MockEmailService struct{}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) SendEmail(_ context.Context, to, subject, _ string) error {
	utils.GetLogger().Info("mock email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// MockSMSService logs instead of sending. For development and tests.
type MockSMSService struct{}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{}
}

func (s *MockSMSService) SendSMS(_ context.Context, to, body string) error {
	utils.GetLogger().Info("mock SMS sent",
		zap.String("to", to),
		zap.String("body", body))
	return nil
}
