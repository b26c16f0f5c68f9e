package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends the account emails.
type Mailer interface {
	SendResetCode(to, name, code string) error
	SendPasswordChanged(to, name string) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type EmailData struct {
	Subject  string
	To       []string
	Template string
	Data     interface{}
}

// Embedded email templates
var emailTemplates = map[string]*template.Template{
	"reset_code": template.Must(template.New("reset_code").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your Password Reset OTP</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .otp-code { font-size: 24px; font-weight: bold; color: #0e7c86; margin: 20px 0; text-align: center; letter-spacing: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <h2>Password Reset Request</h2>
    <p>Hello {{.Name}},</p>
    <p>Use the following code to reset your GearGuard password:</p>
    <div class="otp-code">{{.Code}}</div>
    <p>This code will expire in 15 minutes. If you didn't request this, you can ignore this email.</p>
    <div class="footer">&copy; {{.Year}} Gear Guard</div>
</body>
</html>`)),

	"password_changed": template.Must(template.New("password_changed").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your Password Has Been Reset</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <h2>Password Changed</h2>
    <p>Hello {{.Name}},</p>
    <p>The password of your GearGuard account was changed. If this wasn't you, contact your maintenance manager immediately.</p>
    <div class="footer">&copy; {{.Year}} Gear Guard</div>
</body>
</html>`)),
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendResetCode(to, name, code string) error {
	return m.send(EmailData{
		Subject:  "Your Password Reset OTP",
		To:       []string{to},
		Template: "reset_code",
		Data: struct {
			Name string
			Code string
			Year int
		}{name, code, time.Now().Year()},
	})
}

func (m *SMTPMailer) SendPasswordChanged(to, name string) error {
	return m.send(EmailData{
		Subject:  "Your Password Has Been Reset",
		To:       []string{to},
		Template: "password_changed",
		Data: struct {
			Name string
			Year int
		}{name, time.Now().Year()},
	})
}

func (m *SMTPMailer) send(data EmailData) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("email configuration not initialized")
	}

	body, err := renderEmail(data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", data.To...)
	msg.SetHeader("Subject", data.Subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	LogEvent("email_sent", map[string]interface{}{
		"template": data.Template,
		"to":       data.To,
	})
	return nil
}

func renderEmail(data EmailData) (string, error) {
	tmpl, ok := emailTemplates[data.Template]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", data.Template)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}
