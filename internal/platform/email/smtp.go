// Package email sends customer-facing mail over SMTP. Delivery mail is
// fire-and-forget from the caller's perspective.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"shootflow/internal/platform/config"
)

// Sender is the narrow interface consumed by the project service.
type Sender interface {
	SendDeliveryEmail(toEmail, toName, orgName, address, deliveryURL string) error
}

type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendDeliveryEmail(toEmail, toName, orgName, address, deliveryURL string) error {
	if !s.cfg.Enabled {
		return nil
	}

	smtpCfg := s.cfg.SMTP
	subject := fmt.Sprintf("Your media for %s is ready", address)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", smtpCfg.FromName, smtpCfg.FromAddress)
	fmt.Fprintf(&b, "To: %s <%s>\r\n", toName, toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", toName)
	fmt.Fprintf(&b, "%s has delivered the media for %s.\r\n\r\n", orgName, address)
	fmt.Fprintf(&b, "View and download everything here:\r\n%s\r\n", deliveryURL)

	addr := fmt.Sprintf("%s:%d", smtpCfg.Host, smtpCfg.Port)
	auth := smtp.PlainAuth("", smtpCfg.Username, smtpCfg.Password, smtpCfg.Host)
	return smtp.SendMail(addr, auth, smtpCfg.FromAddress, []string{toEmail}, []byte(b.String()))
}
