package mailer

import (
	"fmt"
	"net/smtp"
	"os"
)

// Sender dispatches transactional mail. The OTP flow depends on this
// interface so delivery can be faked in tests.
type Sender interface {
	SendOTP(recipient, code string) error
}

// SMTPConfig holds connection settings for the outgoing mail account.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPConfigFromEnv reads mail settings from environment variables.
func SMTPConfigFromEnv() SMTPConfig {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return cfg
}

// SMTPSender implements Sender over plain SMTP auth.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendOTP(recipient, code string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	subject := "Kode OTP Reset Password"
	body := fmt.Sprintf(
		"Halo,\n\nBerikut adalah kode OTP Anda untuk reset password: %s\n\nJangan berikan kode ini kepada siapa pun.\n\nSalam,\nTim Web IoT",
		code,
	)
	msg := []byte(fmt.Sprintf("From: Admin Web IoT <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.From, recipient, subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}
