package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"gopkg.in/gomail.v2"

	"minevent/config"
)

type EmailData struct {
	Subject string
	To      string
	Data    interface{}
	Year    int
}

// Embedded email templates
var emailTemplates = map[string]string{
	"verification": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #b07d2b; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Confirm your email</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>Thanks for registering. Click the button below to verify your email address:</p>

        <p style="text-align: center;">
            <a class="button" href="{{.Data.Link}}">Verify email</a>
        </p>

        <p>This link will expire in 1 hour. If the button does not work, copy this URL into your browser:</p>
        <p>{{.Data.Link}}</p>
    </div>

    <div class="footer">
        <p>If you didn't create an account, you can safely ignore this email.</p>
        <p>© {{.Year}} MineVent Committee. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// VerificationLink builds the confirmation URL embedded in the email.
func VerificationLink(token string) string {
	return fmt.Sprintf("%s/auth/new-verification?token=%s",
		config.AppConfig.BaseURL, url.QueryEscape(token))
}

// RenderEmail executes a named template against the email data.
func RenderEmail(name string, data EmailData) (string, error) {
	raw, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// SendVerificationEmail sends the templated verification email carrying a
// single-use token link.
func SendVerificationEmail(to, token string) error {
	data := EmailData{
		Subject: "Verify your email address",
		To:      to,
		Data:    struct{ Link string }{Link: VerificationLink(token)},
		Year:    time.Now().Year(),
	}

	body, err := RenderEmail("verification", data)
	if err != nil {
		return err
	}
	return sendEmail(to, data.Subject, body)
}

func sendEmail(to, subject, body string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return fmt.Errorf("email configuration not initialized")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.FromEmail, cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
