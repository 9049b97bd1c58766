package email

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/directory-admin/pkg/messaging"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestSendNotification(t *testing.T) {
	fs := &fakeSender{}
	svc := NewWithSender(Config{From: "dash@example.com", To: "ops@example.com", SubjectPrefix: "[dash] "}, fs)

	err := svc.SendNotification(context.Background(), messaging.Notification{
		ID:        "n1",
		Level:     messaging.LevelError,
		Message:   "Failed to create doctor.",
		Source:    "console",
		RequestID: "req-1",
		Time:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)

	m := fs.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"[dash] [ERROR] Failed to create doctor."}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Request ID: req-1")
	assert.Contains(t, buf.String(), "Source:     console")
}

func TestSendCustomError(t *testing.T) {
	svc := NewWithSender(Config{From: "a@example.com"}, &fakeSender{err: errors.New("refused")})

	err := svc.SendCustom(context.Background(), "b@example.com", "hi", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestSendCanceled(t *testing.T) {
	fs := &fakeSender{}
	svc := NewWithSender(Config{}, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, svc.SendCustom(ctx, "b@example.com", "hi", "body"), context.Canceled)
	assert.Empty(t, fs.sent)
}

func TestNewSMTPServiceValidates(t *testing.T) {
	_, err := NewSMTPService(Config{})
	assert.Error(t, err)
	_, err = NewSMTPService(Config{Host: "smtp.example.com"})
	assert.Error(t, err)

	svc, err := NewSMTPService(Config{Host: "smtp.example.com", From: "a@example.com", To: "b@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("a", 70)
	assert.Len(t, []rune(truncate(long, 60)), 60)
}
