package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

var verifyEmailHTML = htmpl.Must(htmpl.New("verify_email").Parse(`<!DOCTYPE html>
<html>
<body style="background-color: #f0f0f0; padding: 20px; margin: 0;">
  <table align="center" cellpadding="0" cellspacing="0" border="0" width="100%" style="max-width: 600px; border: 1px solid #e0e0e0; border-radius: 8px; background-color: #ffffff; margin: 0 auto;">
    <tr>
      <td style="padding: 20px;">
        <h2 style="color: #333333; font-size: 24px; margin: 0;">Email Verification</h2>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          Hello{{if .Name}} {{.Name}}{{end}},
          <br><br>
          Thank you for registering with us! To complete your registration, please confirm your email address by clicking the link below:
        </p>
        <div style="text-align: center; margin: 30px 0;">
          <a href="{{.VerifyURL}}" style="font-size: 18px; color: #ffffff; background-color: #4CAF50; padding: 12px 24px; border-radius: 4px; text-decoration: none; display: inline-block;">Verify my email</a>
        </div>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          This link will expire in {{.ExpiresIn}}. Please use it as soon as possible.
        </p>
        <p style="font-size: 14px; color: #888888; margin-top: 30px; line-height: 20px;">
          If you did not create an account, please ignore this email.
        </p>
        <p style="font-size: 14px; color: #888888; margin-top: 10px; line-height: 20px;">
          Best regards,
          <br>
          The {{.CompanyName}} Team
        </p>
      </td>
    </tr>
  </table>
</body>
</html>`))

var welcomeHTML = htmpl.Must(htmpl.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="background-color: #f9f9f9; padding: 20px; margin: 0;">
  <table align="center" cellpadding="0" cellspacing="0" border="0" width="100%" style="max-width: 600px; border: 1px solid #dddddd; border-radius: 8px; background-color: #ffffff; margin: 0 auto;">
    <tr>
      <td style="padding: 20px;">
        <h2 style="color: #333333; font-size: 24px; margin: 0;">Welcome to {{.CompanyName}}!</h2>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          Hi {{.Name}},
          <br><br>
          Thank you for joining us! We're thrilled to have you as part of our community. Our team is dedicated to providing you with the best experience possible, and we are here to support you every step of the way.
        </p>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          If you have any questions or need assistance, feel free to reach out to our support team{{if .SupportURL}} at <a href="{{.SupportURL}}" style="color: #1a73e8; text-decoration: none;">{{.SupportURL}}</a>{{end}}.
        </p>
        <p style="font-size: 14px; color: #888888; margin-top: 30px; line-height: 20px;">
          Best regards,
          <br>
          The {{.CompanyName}} Team
        </p>
      </td>
    </tr>
  </table>
</body>
</html>`))

var passwordResetHTML = htmpl.Must(htmpl.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="background-color: #f0f0f0; padding: 20px; margin: 0;">
  <table align="center" cellpadding="0" cellspacing="0" border="0" width="100%" style="max-width: 600px; border: 1px solid #e0e0e0; border-radius: 8px; background-color: #ffffff; margin: 0 auto;">
    <tr>
      <td style="padding: 20px;">
        <h2 style="color: #333333; font-size: 24px; margin: 0;">Password Reset</h2>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          Hello{{if .Name}} {{.Name}}{{end}},
          <br><br>
          We received a request to reset the password for your account. Click the button below to choose a new password:
        </p>
        <div style="text-align: center; margin: 30px 0;">
          <a href="{{.ResetURL}}" style="font-size: 18px; color: #ffffff; background-color: #d9534f; padding: 12px 24px; border-radius: 4px; text-decoration: none; display: inline-block;">Reset my password</a>
        </div>
        <p style="font-size: 16px; color: #555555; line-height: 24px; margin: 16px 0;">
          This link will expire in {{.ExpiresIn}}. If you did not request a password reset, please ignore this email and your password will remain unchanged.
        </p>
        <p style="font-size: 14px; color: #888888; margin-top: 10px; line-height: 20px;">
          Best regards,
          <br>
          The {{.CompanyName}} Team
        </p>
      </td>
    </tr>
  </table>
</body>
</html>`))

var byName = map[string]*htmpl.Template{
	"verify_email":   verifyEmailHTML,
	"welcome":        welcomeHTML,
	"password_reset": passwordResetHTML,
}

var subjects = map[string]string{
	"verify_email":   "Verify your email address",
	"welcome":        "Welcome aboard!",
	"password_reset": "Your password reset link (valid for a short time)",
}

// Render returns the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	t, ok := byName[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}
