package emailv2

import (
	"bytes"
	"context"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

const welcomeHTML = `<!doctype html>
<html><body style="font-family:sans-serif">
<p>Hola {{.Name}},</p>
<p>Tu cuenta <strong>{{.Email}}</strong> fue creada como <strong>{{.Role}}</strong> en {{if .TenantName}}{{.TenantName}}{{else}}{{.TenantID}}{{end}}.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Ingresar a {{.AppName}}</a></p>{{end}}
</body></html>`

const welcomeText = `Hola {{.Name}},

Tu cuenta {{.Email}} fue creada como {{.Role}} en {{if .TenantName}}{{.TenantName}}{{else}}{{.TenantID}}{{end}}.
{{if .LoginURL}}
Ingresar a {{.AppName}}: {{.LoginURL}}
{{end}}`

var (
	welcomeHTMLTpl = htmltpl.Must(htmltpl.New("welcome_html").Parse(welcomeHTML))
	welcomeTextTpl = texttpl.Must(texttpl.New("welcome_txt").Parse(welcomeText))
)

// WelcomeNotifier envía el email de bienvenida tras un provisioning.
type WelcomeNotifier struct {
	sender   Sender
	tenants  repository.TenantRepository // opcional, para el nombre del tenant
	appName  string
	loginURL string
	role     string
}

// NewWelcomeNotifier crea el notifier. tenants puede ser nil.
func NewWelcomeNotifier(sender Sender, tenants repository.TenantRepository, appName, loginURL string) *WelcomeNotifier {
	if appName == "" {
		appName = "la plataforma"
	}
	return &WelcomeNotifier{
		sender:   sender,
		tenants:  tenants,
		appName:  appName,
		loginURL: loginURL,
		role:     repository.RoleAdmin,
	}
}

// SendWelcome implementa admin.Notifier.
func (n *WelcomeNotifier) SendWelcome(ctx context.Context, email, name, tenantID string) error {
	vars := WelcomeVars{
		Name:     name,
		Email:    email,
		TenantID: tenantID,
		Role:     n.role,
		LoginURL: n.loginURL,
		AppName:  n.appName,
	}
	if n.tenants != nil {
		if t, err := n.tenants.GetByID(ctx, tenantID); err == nil {
			vars.TenantName = t.Name
		} else {
			logger.From(ctx).Debug("welcome: tenant name lookup failed", logger.Err(err))
		}
	}

	html, text, err := RenderWelcome(vars)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Bienvenido a %s", n.appName)
	if vars.TenantName != "" {
		subject = fmt.Sprintf("Bienvenido a %s", vars.TenantName)
	}
	return n.sender.Send(ctx, email, subject, html, text)
}

// RenderWelcome renderiza las dos variantes del template.
func RenderWelcome(v WelcomeVars) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := welcomeHTMLTpl.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("render welcome html: %w", err)
	}
	if err := welcomeTextTpl.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("render welcome text: %w", err)
	}
	return hb.String(), tb.String(), nil
}
