package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// SMTPMailer delivers mail over SMTP. It implements Mailer.
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// SMTPOptions configures the SMTP transport.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Logger   Logger
}

// NewSMTPMailer builds an SMTP backed Mailer.
func NewSMTPMailer(opts SMTPOptions) (*SMTPMailer, error) {
	if opts.Host == "" {
		return nil, errors.New("smtp host must not be empty", errors.CategoryInternal)
	}
	if opts.From == "" {
		return nil, errors.New("smtp sender address must not be empty", errors.CategoryInternal)
	}
	if opts.Logger == nil {
		opts.Logger = defLogger{}
	}

	clientOpts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if opts.Port > 0 {
		clientOpts = append(clientOpts, mail.WithPort(opts.Port))
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build smtp client")
	}

	return &SMTPMailer{client: client, from: opts.From, logger: opts.Logger}, nil
}

// Send delivers the message. No retries: the caller decides what a failed
// delivery means for its operation.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("message must have at least one recipient", errors.CategoryValidation)
	}

	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid sender address")
	}
	if err := out.To(msg.To...); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid recipient address")
	}
	if len(msg.Cc) > 0 {
		if err := out.Cc(msg.Cc...); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid cc address")
		}
	}
	if len(msg.Bcc) > 0 {
		if err := out.Bcc(msg.Bcc...); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid bcc address")
		}
	}

	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		m.logger.Error("SMTPMailer delivery failed: %v", err)
		return errors.Wrap(err, errors.CategoryOperation, "mail delivery failed").
			WithTextCode(TextCodeMailDelivery)
	}

	return nil
}
