// Package mailer sends invoice e-mails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// Message is a single HTML e-mail.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer sender
}

// NewSMTPMailer returns a mailer that authenticates as user on host:port and
// sends from the given address.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// Send builds the MIME message and hands it to the relay. gomail has no
// context support, so ctx is only checked before dialling.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.MimeType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.MimeType},
			}))
		}
		gm.Attach(a.Name, settings...)
	}
	return gm
}
