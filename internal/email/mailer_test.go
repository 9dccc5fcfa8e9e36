package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"homefix_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEscapesMessage(t *testing.T) {
	html, err := Render(TemplateData{
		Subject: "Payment Successful",
		Message: "Payment of Rs.80.00 to <b>Walt</b> confirmed.",
		Company: companyName,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>Payment Successful</h2>")
	assert.Contains(t, html, "&lt;b&gt;Walt&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Walt</b>")
}

func TestBuildMessage(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@homefix.test"})

	msg, err := m.build("owner@example.test", "Payment Failed", "Payment for booking failed.")
	require.NoError(t, err)

	assert.Equal(t, []string{"noreply@homefix.test"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"owner@example.test"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.True(t, strings.Contains(raw, "text/plain"))
	assert.True(t, strings.Contains(raw, "text/html"))
}

func TestBuildRequiresRecipient(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 2525})
	_, err := m.build("", "s", "b")
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	// порт 1 закрыт, отправка не успеет раньше отмены
	m := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@homefix.test"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "owner@example.test", "s", "b")
	assert.Error(t, err)
}
