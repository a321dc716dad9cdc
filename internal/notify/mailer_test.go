package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestSender(d dialer) *SMTPSender {
	return &SMTPSender{
		cfg:    SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"},
		dialer: d,
	}
}

func TestSendPasswordReset(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newTestSender(d)

	err := s.SendPasswordReset(context.Background(), "ana@example.com", "https://app.example.com/reset-password?token=abc")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	require.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))
	require.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
}

func TestSendPasswordResetDialerFailure(t *testing.T) {
	t.Parallel()

	s := newTestSender(&fakeDialer{err: errors.New("connection refused")})
	err := s.SendPasswordReset(context.Background(), "ana@example.com", "https://app.example.com/reset-password?token=abc")
	require.Error(t, err)
}

func TestSendPasswordResetCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDialer{}
	s := newTestSender(d)
	err := s.SendPasswordReset(ctx, "ana@example.com", "link")
	require.Error(t, err)
	require.Empty(t, d.sent)
}
