package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTP struct {
	opt SMTPOptions
}

func NewSMTP(opt SMTPOptions) *SMTP { return &SMTP{opt: opt} }

func (s *SMTP) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.opt.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.opt.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.opt.Username),
			gomail.WithPassword(s.opt.Password),
		)
	}
	return gomail.NewClient(s.opt.Host, opts...)
}

func (s *SMTP) Send(ctx context.Context, to, subject, html string) error {
	m := gomail.NewMsg()
	if err := m.From(s.opt.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(gomail.TypeTextHTML, html)

	c, err := s.client()
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// Log writes messages to the logger instead of sending them.
type Log struct {
	L *zap.Logger
}

func (l Log) Send(_ context.Context, to, subject, html string) error {
	l.L.Info("mail (not sent)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("html", html),
	)
	return nil
}

var niceEmail = template.Must(template.New("nice").Parse(`<div class="email" style="
    border: 1px solid black;
    padding: 20px;
    font-family: sans-serif;
    line-height: 2;
    font-size: 20px;
  ">
  <h2>Hello There!</h2>
  <p>{{.Text}}</p>
  {{if .Link}}<p><a href="{{.Link}}">{{.LinkText}}</a></p>{{end}}
  <p>Wes Bos</p>
</div>`))

type NiceEmail struct {
	Text     string
	Link     string
	LinkText string
}

// Render produces the storefront's standard HTML mail body.
func (e NiceEmail) Render() (string, error) {
	var buf bytes.Buffer
	if err := niceEmail.Execute(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}
