// AngelaMos | 2026
// mailer.go

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/carterperez-dev/commerce-backend/internal/auth"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/order"
)

// Mailer renders account and order email and queues it on the dispatcher.
type Mailer struct {
	dispatcher *Dispatcher
	baseURL    string
	operator   string
	logger     *slog.Logger
}

func New(
	dispatcher *Dispatcher,
	appCfg config.AppConfig,
	smtpCfg config.SMTPConfig,
	logger *slog.Logger,
) *Mailer {
	return &Mailer{
		dispatcher: dispatcher,
		baseURL:    appCfg.BaseURL,
		operator:   smtpCfg.OperatorEmail,
		logger:     logger,
	}
}

var (
	_ auth.MailSender  = (*Mailer)(nil)
	_ order.MailSender = (*Mailer)(nil)
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>Welcome, {{.Name}}</h2>
  <p>Confirm your email address to activate your account. The link is valid
  for 24 hours.</p>
  <p><a href="{{.Link}}">Verify your email</a></p>
  <p>If you did not create this account, ignore this message.</p>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>You're all set, {{.Name}}</h2>
  <p>Your email address is verified and your account is active.</p>
</body>
</html>`))

var signupNotificationTmpl = template.Must(template.New("signup").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>New account registered</h2>
  <p>{{.Email}} just signed up and is awaiting email verification.</p>
</body>
</html>`))

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>Thanks for your order, {{.Name}}</h2>
  <p>Order <strong>{{.OrderID}}</strong> was received and is awaiting
  payment.</p>
  <p>Total: <strong>{{printf "%.2f" .Total}}</strong></p>
</body>
</html>`))

var orderInvoiceTmpl = template.Must(template.New("invoice").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>Payment received, {{.Name}}</h2>
  <p>Order <strong>{{.OrderID}}</strong> is paid in full.</p>
  <p>Amount charged: <strong>{{printf "%.2f" .Total}}</strong></p>
  <p>Keep this message as your invoice.</p>
</body>
</html>`))

var orderNotificationTmpl = template.Must(template.New("notify").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>New order {{.OrderID}}</h2>
  <p>Placed by {{.Email}} for a total of
  <strong>{{printf "%.2f" .Total}}</strong>.</p>
</body>
</html>`))

func (m *Mailer) SendVerification(email, name, token string) {
	link := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", m.baseURL, token)

	m.send(email, "Verify your email address", verificationTmpl, map[string]any{
		"Name": name,
		"Link": link,
	})
}

func (m *Mailer) SendWelcome(email, name string) {
	m.send(email, "Your account is active", welcomeTmpl, map[string]any{
		"Name": name,
	})
}

func (m *Mailer) SendSignupNotification(accountEmail string) {
	if m.operator == "" {
		return
	}

	m.send(m.operator, "New account registered", signupNotificationTmpl, map[string]any{
		"Email": accountEmail,
	})
}

func (m *Mailer) SendOrderConfirmation(
	email, name, orderID string,
	total float64,
) {
	m.send(email, "Order received", orderConfirmationTmpl, map[string]any{
		"Name":    name,
		"OrderID": orderID,
		"Total":   total,
	})
}

func (m *Mailer) SendOrderInvoice(
	email, name, orderID string,
	total float64,
) {
	m.send(email, "Your invoice", orderInvoiceTmpl, map[string]any{
		"Name":    name,
		"OrderID": orderID,
		"Total":   total,
	})
}

func (m *Mailer) SendOrderNotification(
	orderID, accountEmail string,
	total float64,
) {
	if m.operator == "" {
		return
	}

	m.send(m.operator, "New order placed", orderNotificationTmpl, map[string]any{
		"OrderID": orderID,
		"Email":   accountEmail,
		"Total":   total,
	})
}

func (m *Mailer) send(
	to, subject string,
	tmpl *template.Template,
	data map[string]any,
) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.logger.Error("email template render failed",
			slog.String("subject", subject),
			slog.Any("error", err),
		)
		return
	}

	m.dispatcher.Enqueue(Message{
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
	})
}
