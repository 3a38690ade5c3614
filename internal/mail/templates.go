package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Content is the body of a transactional email with a single call to action.
type Content struct {
	Name         string
	Intro        string
	Instructions string
	ButtonText   string
	ButtonColor  string
	Link         string
	Outro        string
}

// VerificationContent builds the email-verification mail.
func VerificationContent(username, verificationURL string) Content {
	return Content{
		Name:         username,
		Intro:        "Welcome to Project Management! We're very excited to have you on board.",
		Instructions: "To verify your email, please click on the button below:",
		ButtonText:   "Confirm your email",
		ButtonColor:  "#22BC66",
		Link:         verificationURL,
		Outro:        "Need help, or have questions? Just reply to this email, we'd love to help.",
	}
}

// PasswordResetContent builds the forgot-password mail.
func PasswordResetContent(username, resetURL string) Content {
	return Content{
		Name:         username,
		Intro:        "You have received this email because a password reset request for your account was received.",
		Instructions: "Click the button below to reset your password:",
		ButtonText:   "Reset your password",
		ButtonColor:  "#DC4D2F",
		Link:         resetURL,
		Outro:        "If you did not request a password reset, no further action is required on your part.",
	}
}

var htmlTemplate = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Product}}</h2>
  <p>Hi {{.Content.Name}},</p>
  <p>{{.Content.Intro}}</p>
  <p>{{.Content.Instructions}}</p>
  <p>
    <a href="{{.Content.Link}}" style="background: {{.Content.ButtonColor}}; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">{{.Content.ButtonText}}</a>
  </p>
  <p>{{.Content.Outro}}</p>
</body>
</html>
`))

// Render produces a Message for to with plain text and HTML bodies.
func Render(product, to, subject string, content Content) (Message, error) {
	var html bytes.Buffer
	err := htmlTemplate.Execute(&html, struct {
		Product string
		Content Content
	}{product, content})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render mail template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s\n\n%s\n%s\n\n%s\n\n%s\n",
		content.Name,
		content.Intro,
		content.Instructions,
		content.Link,
		content.Outro,
		product,
	)

	return Message{
		To:      to,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
