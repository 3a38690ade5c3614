package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/project-management-api/internal/config"
)

func TestRender_Verification(t *testing.T) {
	link := "http://localhost:8080/api/v1/auth/verify-email/abc123"
	msg, err := Render("Task Manager", "alice@example.com", "Please verify your email", VerificationContent("alice", link))
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Please verify your email", msg.Subject)
	assert.Contains(t, msg.Text, link)
	assert.Contains(t, msg.HTML, `href="`+link+`"`)
	assert.Contains(t, msg.HTML, "Hi alice,")
}

func TestRender_EscapesHTML(t *testing.T) {
	msg, err := Render("Task Manager", "x@example.com", "Reset", PasswordResetContent("<script>", "http://example.com/reset/1"))
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestNewMailer_FallsBackToLog(t *testing.T) {
	mailer := NewMailer(config.MailConfig{})
	_, ok := mailer.(LogMailer)
	require.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), Message{To: "x@example.com", Subject: "hi"}))

	_, ok = NewMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}).(*SMTPMailer)
	assert.True(t, ok)
}
