package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	ActivationTmpl *template.Template
	ResetPassTmpl  *template.Template
}

// NewTemplateManager parses all email templates at startup so a broken
// template fails the boot, not a request.
func NewTemplateManager() (*TemplateManager, error) {
	activationTmpl, err := template.New("activation").Parse(accountActivTemplate)
	if err != nil {
		return nil, err
	}

	resetPassTmpl, err := template.New("resetPassword").Parse(passwordResetTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		ActivationTmpl: activationTmpl,
		ResetPassTmpl:  resetPassTmpl,
	}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name string
	Link string
}

// GenerateActivateAccountEmailHTML executes the activation template.
func (tm *TemplateManager) GenerateActivateAccountEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.ActivationTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateResetPasswordEmailHTML executes the password reset template.
func (tm *TemplateManager) GenerateResetPasswordEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.ResetPassTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const accountActivTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 560px; margin: 0 auto; padding: 24px;">
    <h2>Welcome{{if .Name}}, {{.Name}}{{end}}!</h2>
    <p>Thanks for creating an account. Please confirm your email address by clicking the button below. The link is valid for 30 minutes.</p>
    <p style="text-align: center; margin: 32px 0;">
      <a href="{{.Link}}" style="background-color: #2f6feb; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Activate Account</a>
    </p>
    <p>If the button does not work, copy and paste this link into your browser:</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>If you did not create an account, you can safely ignore this email.</p>
  </div>
</body>
</html>`

const passwordResetTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 560px; margin: 0 auto; padding: 24px;">
    <h2>Password Reset{{if .Name}} for {{.Name}}{{end}}</h2>
    <p>We received a request to reset your password. Click the button below within 15 minutes to choose a new one.</p>
    <p style="text-align: center; margin: 32px 0;">
      <a href="{{.Link}}" style="background-color: #2f6feb; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset Password</a>
    </p>
    <p>If the button does not work, copy and paste this link into your browser:</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>If you did not request a password reset, no action is needed.</p>
  </div>
</body>
</html>`
