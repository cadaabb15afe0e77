package services

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Transport delivers one rendered message to one recipient. Implementations
// must honor ctx cancellation; the dispatcher wraps every send in a timeout
// and treats expiry as a transport failure.
type Transport interface {
	Send(ctx context.Context, recipient, message string) error
}

// sendWithDeadline runs a blocking transport call under ctx. The underlying
// client call cannot be interrupted, so on expiry the goroutine is left to
// finish in the background and its result is discarded.
func sendWithDeadline(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type TwilioSMSTransport struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSTransport() *TwilioSMSTransport {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioSMSTransport{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

func (t *TwilioSMSTransport) Send(ctx context.Context, recipient, message string) error {
	return sendWithDeadline(ctx, func() error {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(recipient)
		params.SetFrom(t.from)
		params.SetBody(message)

		resp, err := t.client.Api.CreateMessage(params)
		if err != nil {
			return err
		}
		if resp.Sid != nil {
			log.Printf("SMS sent to %s, SID: %s", recipient, *resp.Sid)
		} else {
			log.Printf("SMS sent to %s, but no SID returned", recipient)
		}
		return nil
	})
}

type SMTPEmailTransport struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPEmailTransport() *SMTPEmailTransport {
	return &SMTPEmailTransport{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (t *SMTPEmailTransport) Send(ctx context.Context, recipient, message string) error {
	return sendWithDeadline(ctx, func() error {
		body := []byte("To: " + recipient + "\r\n" +
			"Subject: Service reminder\r\n" +
			"\r\n" + message + "\r\n")
		auth := smtp.PlainAuth("", t.user, t.pass, t.host)
		addr := fmt.Sprintf("%s:%s", t.host, t.port)
		return smtp.SendMail(addr, auth, t.from, []string{recipient}, body)
	})
}

// InternalNoticeTransport records a notice for the service department. It
// never leaves the process, so there is nothing to fail or time out.
type InternalNoticeTransport struct{}

func (t *InternalNoticeTransport) Send(ctx context.Context, recipient, message string) error {
	log.Printf("Internal notice for %s: %s", recipient, message)
	return nil
}
