package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	confirmSubject = "CashTrackr - Confirma tu cuenta"
	resetSubject   = "CashTrackr - Restablece tu contraseña"
)

var confirmTemplate = template.Must(template.New("confirm").Parse(
	`<p>Hola {{.Name}}, has creado tu cuenta en CashTrackr.</p>
<p>Para confirmar tu cuenta, haz click en el siguiente enlace:</p>
<a href="{{.Link}}">Confirmar Cuenta</a>
<p>e ingresa el código: <b>{{.Token}}</b></p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(
	`<p>Hola {{.Name}}, has solicitado restablecer tu contraseña en CashTrackr.</p>
<p>Para restablecer tu contraseña, haz click en el siguiente enlace:</p>
<a href="{{.Link}}">Restablecer Contraseña</a>
<p>e ingresa el código: <b>{{.Token}}</b></p>
`))

type templateData struct {
	Name  string
	Link  string
	Token string
}

// Templates renders account emails with links into the frontend.
type Templates struct {
	frontendURL string
}

// NewTemplates creates Templates linking to frontendURL.
func NewTemplates(frontendURL string) *Templates {
	return &Templates{frontendURL: strings.TrimRight(frontendURL, "/")}
}

// ConfirmationEmail renders the account confirmation email.
func (t *Templates) ConfirmationEmail(name, addr, token string) (Message, error) {
	link := t.frontendURL + "/auth/confirm-account"
	html, err := render(confirmTemplate, templateData{Name: name, Link: link, Token: token})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:     KindConfirmAccount,
		To:       addr,
		ToName:   name,
		Subject:  confirmSubject,
		HTMLBody: html,
		TextBody: fmt.Sprintf("Hola %s, has creado tu cuenta en CashTrackr.\nConfirma tu cuenta en %s e ingresa el código: %s\n", name, link, token),
	}, nil
}

// PasswordResetEmail renders the password reset email.
func (t *Templates) PasswordResetEmail(name, addr, token string) (Message, error) {
	link := t.frontendURL + "/auth/new-password"
	html, err := render(resetTemplate, templateData{Name: name, Link: link, Token: token})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:     KindResetPassword,
		To:       addr,
		ToName:   name,
		Subject:  resetSubject,
		HTMLBody: html,
		TextBody: fmt.Sprintf("Hola %s, has solicitado restablecer tu contraseña en CashTrackr.\nVisita %s e ingresa el código: %s\n", name, link, token),
	}, nil
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
