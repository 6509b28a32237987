package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailerService implements the Mailer interface over SMTP.
type SMTPMailerService struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	senderName string
	logger     *zap.Logger
}

// NewSMTPMailerService creates a new SMTPMailerService.
func NewSMTPMailerService(host string, port int, username, password, fromEmail, senderName string, logger *zap.Logger) *SMTPMailerService {
	return &SMTPMailerService{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       fromEmail,
		senderName: senderName,
		logger:     logger.Named("SMTPMailerService"),
	}
}

// SendSignupCode sends the signup verification email via SMTP.
func (s *SMTPMailerService) SendSignupCode(toEmailAddr, toName, code string) error {
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>Your verification code is: <b>%s</b></p>
                             <p>This code will expire in 10 minutes.</p>
                             <p>If you did not request this, please ignore this email.</p>`, toName, code)
	return s.send(toEmailAddr, signupSubject, htmlBody)
}

// SendPasswordResetCode sends the password-reset verification email via SMTP.
func (s *SMTPMailerService) SendPasswordResetCode(toEmailAddr, toName, code string) error {
	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>Your password reset code is: <b>%s</b></p>
                             <p>This code will expire in 10 minutes.</p>
                             <p>If you did not request a password reset, please ignore this email.</p>`, toName, code)
	return s.send(toEmailAddr, resetSubject, htmlBody)
}

func (s *SMTPMailerService) send(toEmailAddr, subject, htmlBody string) error {
	if s.host == "" || s.username == "" || s.password == "" {
		s.logger.Error("SMTP configuration is incomplete, email not sent",
			zap.String("host", s.host),
			zap.Bool("password_set", s.password != ""))
		return fmt.Errorf("SMTP configuration is incomplete")
	}

	m := gomail.NewMessage()
	if s.senderName != "" {
		m.SetAddressHeader("From", s.from, s.senderName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", toEmailAddr)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		s.logger.Error("Failed to send email via SMTP",
			zap.Error(err),
			zap.String("toEmail", toEmailAddr),
			zap.String("smtpHost", s.host))
		return fmt.Errorf("smtp send failed: %w", err)
	}

	s.logger.Info("Email sent successfully via SMTP", zap.String("toEmail", toEmailAddr))
	return nil
}
