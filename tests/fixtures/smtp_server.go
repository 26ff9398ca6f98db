package fixtures

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/require"
)

// CapturedMail is one message accepted by SMTPServer
type CapturedMail struct {
	From       string
	Recipients []string
	Envelope   *enmime.Envelope
	Raw        []byte
	// TLS reports whether the message arrived over an encrypted session
	TLS bool
}

// SMTPServer is an in-process SMTP sink. Accepted messages are parsed with
// enmime so tests can assert on headers, body and attachments.
type SMTPServer struct {
	Addr string

	server   *smtp.Server
	mu       sync.Mutex
	messages []CapturedMail
	reject   *smtp.SMTPError
	username string
	password string
}

// NewSMTPServer starts a plaintext SMTPServer on a loopback port, closed when the test ends
func NewSMTPServer(t testing.TB) *SMTPServer {
	return newSMTPServer(t, nil)
}

// NewSMTPServerStartTLS starts an SMTPServer that offers STARTTLS with a
// certificate for 127.0.0.1. The returned client config trusts that certificate.
func NewSMTPServerStartTLS(t testing.TB) (*SMTPServer, *tls.Config) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	cert := ts.TLS.Certificates[0]
	roots := x509.NewCertPool()
	roots.AddCert(ts.Certificate())
	ts.Close()

	s := newSMTPServer(t, &tls.Config{Certificates: []tls.Certificate{cert}})
	return s, &tls.Config{RootCAs: roots}
}

func newSMTPServer(t testing.TB, tlsConfig *tls.Config) *SMTPServer {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &SMTPServer{Addr: l.Addr().String()}

	srv := smtp.NewServer(&sinkBackend{sink: s})
	srv.Domain = "localhost"
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.MaxMessageBytes = 10 * 1024 * 1024
	srv.AllowInsecureAuth = true
	srv.TLSConfig = tlsConfig
	s.server = srv

	go func() {
		_ = srv.Serve(l)
	}()
	t.Cleanup(func() { _ = srv.Close() })
	return s
}

// RequireAuth makes the server demand AUTH PLAIN with these credentials
func (s *SMTPServer) RequireAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.password = password
}

// RejectData makes every DATA command fail with a permanent error
func (s *SMTPServer) RejectData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = &smtp.SMTPError{
		Code:         554,
		EnhancedCode: smtp.EnhancedCode{5, 7, 1},
		Message:      "Message rejected",
	}
}

// Messages returns the messages accepted so far
func (s *SMTPServer) Messages() []CapturedMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CapturedMail(nil), s.messages...)
}

type sinkBackend struct {
	sink *SMTPServer
}

// NewSession creates a new SMTP session
func (b *sinkBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	_, isTLS := c.TLSConnectionState()
	return &sinkSession{sink: b.sink, tls: isTLS}, nil
}

type sinkSession struct {
	sink       *SMTPServer
	authed     bool
	tls        bool
	from       string
	recipients []string
}

var errAuthRequired = &smtp.SMTPError{
	Code:         530,
	EnhancedCode: smtp.EnhancedCode{5, 7, 0},
	Message:      "Authentication required",
}

// AuthMechanisms advertises PLAIN
func (s *sinkSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

// Auth handles AUTH PLAIN against the configured credentials
func (s *sinkSession) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, smtp.ErrAuthUnknownMechanism
	}
	return sasl.NewPlainServer(func(identity, username, password string) error {
		s.sink.mu.Lock()
		defer s.sink.mu.Unlock()
		if username != s.sink.username || password != s.sink.password {
			return errors.New("invalid credentials")
		}
		s.authed = true
		return nil
	}), nil
}

// Mail handles the MAIL FROM command
func (s *sinkSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sink.mu.Lock()
	needAuth := s.sink.username != ""
	s.sink.mu.Unlock()
	if needAuth && !s.authed {
		return errAuthRequired
	}
	s.from = from
	return nil
}

// Rcpt handles the RCPT TO command
func (s *sinkSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives and parses the message content
func (s *sinkSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.sink.mu.Lock()
	reject := s.sink.reject
	s.sink.mu.Unlock()
	if reject != nil {
		return reject
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	s.sink.mu.Lock()
	s.sink.messages = append(s.sink.messages, CapturedMail{
		From:       s.from,
		Recipients: append([]string(nil), s.recipients...),
		Envelope:   env,
		Raw:        raw,
		TLS:        s.tls,
	})
	s.sink.mu.Unlock()
	return nil
}

// Reset clears the envelope state
func (s *sinkSession) Reset() {
	s.from = ""
	s.recipients = nil
}

// Logout handles session termination
func (s *sinkSession) Logout() error {
	return nil
}
