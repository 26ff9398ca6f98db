package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
)

// TLS modes for SMTPConfig.TLSMode
const (
	TLSModeNone     = "none"
	TLSModeStartTLS = "starttls"
	TLSModeImplicit = "implicit"
)

const (
	implicitTLSPort = 465
	submissionPort  = 587
	dialTimeout     = 30 * time.Second
)

// SMTPConfig holds the outbound mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// TLSMode is one of the TLSMode constants. Empty picks implicit TLS on
	// 465, STARTTLS on 587 and plain SMTP on any other port.
	TLSMode string
	// TLSConfig overrides the client TLS settings; ServerName defaults to Host
	TLSConfig *tls.Config
}

// Addr returns host:port
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Mode resolves TLSMode, applying the port default when it is empty
func (c SMTPConfig) Mode() string {
	if c.TLSMode != "" {
		return c.TLSMode
	}
	switch c.Port {
	case implicitTLSPort:
		return TLSModeImplicit
	case submissionPort:
		return TLSModeStartTLS
	default:
		return TLSModeNone
	}
}

func (c SMTPConfig) tlsConfig() *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.TLSConfig != nil {
		cfg = c.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = c.Host
	}
	return cfg
}

// SMTPNotifier builds MIME messages with enmime and delivers them with go-smtp
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPNotifier creates an SMTPNotifier. STARTTLS is required, never
// opportunistic: a server that does not offer it fails the send.
func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Send delivers msg. Every failure matches apperrors.ErrNotificationFailed.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Notification(err)
	}

	rcpts := msg.Recipients()
	if msg.To == "" || len(rcpts) == 0 {
		return apperrors.Notification(ErrNoRecipient)
	}

	raw, err := n.build(msg)
	if err != nil {
		return apperrors.Notification(err)
	}

	if err := n.deliver(ctx, rcpts, raw); err != nil {
		return apperrors.Notification(fmt.Errorf("send via %s (%s): %w", n.cfg.Addr(), n.cfg.Mode(), err))
	}

	n.logger.Info("notification sent",
		slog.String("subject", msg.Subject),
		slog.Int("recipients", len(rcpts)),
		slog.Bool("attachment", msg.Attachment != nil),
	)
	return nil
}

func (n *SMTPNotifier) deliver(ctx context.Context, rcpts []string, raw []byte) error {
	c, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if n.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := c.Auth(sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.SendMail(n.cfg.From, rcpts, bytes.NewReader(raw)); err != nil {
		return err
	}
	return c.Quit()
}

// dial opens the connection for the configured TLS mode
func (n *SMTPNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := n.cfg.Addr()
	d := &net.Dialer{Timeout: dialTimeout}

	switch mode := n.cfg.Mode(); mode {
	case TLSModeImplicit:
		conn, err := (&tls.Dialer{NetDialer: d, Config: n.cfg.tlsConfig()}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn), nil
	case TLSModeStartTLS:
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return smtp.NewClientStartTLS(conn, n.cfg.tlsConfig())
	case TLSModeNone:
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn), nil
	default:
		return nil, fmt.Errorf("unknown TLS mode %q", mode)
	}
}

func (n *SMTPNotifier) build(msg Message) ([]byte, error) {
	builder := enmime.Builder().
		From(n.cfg.FromName, n.cfg.From).
		To("", msg.To).
		Subject(msg.Subject).
		Text([]byte(msg.Body))
	if msg.CC != "" && msg.CC != msg.To {
		builder = builder.CC("", msg.CC)
	}
	if att := msg.Attachment; att != nil {
		builder = builder.AddAttachment(att.Content, att.ContentType, att.Filename)
	}

	part, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build message: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return buf.Bytes(), nil
}
