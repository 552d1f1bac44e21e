package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"freelancehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSend_Unconfigured(t *testing.T) {
	m := New(config.MailConfig{}, zap.NewNop())
	require.NoError(t, m.Send(context.Background(), "a@b.test", "hi", "<p>x</p>"))
}

func TestResetCodeEmail(t *testing.T) {
	subject, body := ResetCodeEmail("123456", 5*time.Minute)
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "<strong>123456</strong>")
	assert.Contains(t, body, "5 minutes")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("from@x.test", "to@x.test", "Subj", "<p>b</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: from@x.test\r\n"))
	assert.Contains(t, msg, "Subject: Subj\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>b</p>"))
}
