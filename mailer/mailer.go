package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"freelancehub/config"

	"go.uber.org/zap"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Mailer struct {
	cfg config.MailConfig
	log *zap.Logger
}

func New(cfg config.MailConfig, log *zap.Logger) *Mailer {
	if !cfg.Configured() {
		log.Warn("mail credentials not set; outgoing mail will only be logged")
	}
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	if !m.cfg.Configured() {
		m.log.Info("mail not sent (mailer not configured)", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	msg := buildMessage(m.cfg.From, to, subject, html)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if !m.cfg.Secure {
		return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html)
	return []byte(b.String())
}

var resetTmpl = template.Must(template.New("reset").Parse(
	`<p>Your password reset code is <strong>{{.Code}}</strong>.</p>` +
		`<p>It expires in {{.Minutes}} minutes. If you did not ask for it, ignore this email.</p>`))

// ResetCodeEmail renders the subject and body of the password reset mail.
func ResetCodeEmail(code string, ttl time.Duration) (string, string) {
	var buf bytes.Buffer
	_ = resetTmpl.Execute(&buf, struct {
		Code    string
		Minutes int
	}{code, int(ttl.Minutes())})
	return "Your password reset code", buf.String()
}
