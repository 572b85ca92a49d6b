package email

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"teamhub-backend/internal/config"
)

type Sender struct {
	config *config.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{config: cfg}
}

// Send delivers an HTML email. If SMTP credentials are not set, the send
// is mocked with a log line so unconfigured environments keep working.
// The dispatch is bounded by the configured timeout; the SMTP dial is not
// interruptible, so on timeout the attempt is abandoned and reported as
// a failure.
func (s *Sender) Send(toEmail, subject, htmlBody string) error {
	if s.config.SMTP.Email == "" || s.config.SMTP.Password == "" {
		log.Printf("SMTP credentials not set. Mocking email to %s (%s)", toEmail, subject)
		return nil
	}

	from := s.config.SMTP.Email
	password := s.config.SMTP.Password
	host := s.config.SMTP.Host
	port := s.config.SMTP.Port
	address := host + ":" + port

	header := "Subject: " + subject + "\n"
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	message := []byte(header + mime + htmlBody)

	auth := smtp.PlainAuth("", from, password, host)

	errCh := make(chan error, 1)
	go func() {
		errCh <- smtp.SendMail(address, auth, from, []string{toEmail}, message)
	}()

	timeout := s.config.Digest.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("email send to %s timed out after %s", toEmail, timeout)
	}
}
