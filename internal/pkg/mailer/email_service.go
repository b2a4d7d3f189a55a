package mailer

import (
	"fmt"
	"html"

	"relatescore-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendInviteCode(toEmail, code string) error
}

// Sender is the part of gomail.Dialer the service needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
	clientURL   string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string, log logger.ILogger) IEmailService {
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), username, senderName, clientURL, log)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName, clientURL string, log logger.ILogger) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
		clientURL:   clientURL,
		logger:      log,
	}
}

// BuildInviteMessage renders the invite mail without sending it.
func (s *emailService) BuildInviteMessage(toEmail, code string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "You're invited to reflect together")

	link := fmt.Sprintf("%s/partner?code=%s", s.clientURL, code)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Someone invited you to RelateScore</h2>
			<p>Enter this code on the partner entry page:</p>
			<h1 style="color: #6C63FF; letter-spacing: 5px;">%s</h1>
			<p>Or open <a href="%s">%s</a>.</p>
			<p>The code works once and expires after a day. Nothing you answer is shared without your consent.</p>
		</div>
	`, html.EscapeString(code), html.EscapeString(link), html.EscapeString(link))
	m.SetBody("text/html", body)
	m.AddAlternative("text/plain", fmt.Sprintf("Your RelateScore invite code is %s. Enter it at %s", code, link))
	return m
}

func (s *emailService) SendInviteCode(toEmail, code string) error {
	if err := s.sender.DialAndSend(s.BuildInviteMessage(toEmail, code)); err != nil {
		s.logger.Error("Mailer", "Failed to send invite code", map[string]interface{}{"to": toEmail, "error": err})
		return err
	}
	s.logger.Info("Mailer", "Invite code sent", map[string]interface{}{"to": toEmail})
	return nil
}
