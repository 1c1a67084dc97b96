// Package emailv2 envía los emails transaccionales del provisioning por SMTP.
package emailv2

import "context"

// Sender envía un email ya renderizado.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
type SMTPConfig struct {
	Host      string // Host del servidor SMTP
	Port      int    // Puerto (default 587)
	Username  string
	Password  string
	FromEmail string
	TLSMode   string // "auto" | "starttls" | "ssl" | "none"
}

// WelcomeVars son las variables del template de bienvenida.
type WelcomeVars struct {
	Name       string
	Email      string
	TenantID   string
	TenantName string
	Role       string
	LoginURL   string
	AppName    string
}
