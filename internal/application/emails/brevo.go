package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, fullname string) error
	SendReservationReceipt(ctx context.Context, toEmail string, r ReceiptData) error
}

// ReceiptData carries the reservation details for the booking receipt email.
type ReceiptData struct {
	ReservationID   uint64
	VehicleMake     string
	VehicleModel    string
	StartTime       time.Time
	StopTime        time.Time
	RentPriceCents  int64
	CollateralCents int64
}

// BrevoClient sends emails via the Brevo API. Env: BREVO_API_KEY, MAIL_FROM.
// An empty APIKey turns every send into a no-op so local dev needs no account.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@drively.app"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Drively"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: "support@drively.app", Name: "Drively Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, fullname string) error {
	if c.APIKey == "" {
		return nil
	}
	if fullname == "" {
		fullname = "there"
	}
	content := welcomeContent(fullname)
	return c.send(ctx, toEmail, "Welcome to Drively!", EmailLayout(content))
}

// SendReservationReceipt sends the booking receipt after a reservation is placed.
func (c *BrevoClient) SendReservationReceipt(ctx context.Context, toEmail string, r ReceiptData) error {
	if c.APIKey == "" {
		return nil
	}
	content := receiptContent(r)
	subject := fmt.Sprintf("Your Drively booking #%d is confirmed", r.ReservationID)
	return c.send(ctx, toEmail, subject, EmailLayout(content))
}

func welcomeContent(fullname string) string {
	return fmt.Sprintf(`
    <h1>Welcome aboard, %s!</h1>
    <p>Your <strong>Drively</strong> account is ready. Browse listed vehicles, top up your wallet and book your first trip in minutes.</p>
    <center>
      <a href="https://drively.app/vehicles" class="drively-button">Browse Vehicles</a>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not sign up for this account, please contact our support team immediately.
    </p>
    <p>The Drively Team</p>
`, EscapeHTML(fullname))
}

func receiptContent(r ReceiptData) string {
	return fmt.Sprintf(`
    <h1>Booking #%d Confirmed</h1>
    <p>Your reservation for the <strong>%s %s</strong> is locked in.</p>
    <h2>Details</h2>
    <p>
      Pickup: %s<br>
      Return: %s<br>
      Rent: %s (held in escrow)<br>
      Collateral: %s (refunded on timely return)
    </p>
    <p style="margin-top:20px;font-size:14px;color:#666;">
      You can cancel any time before pickup for a full refund.
    </p>
    <p>The Drively Team</p>
`,
		r.ReservationID,
		EscapeHTML(r.VehicleMake), EscapeHTML(r.VehicleModel),
		r.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		r.StopTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		FormatCents(r.RentPriceCents),
		FormatCents(r.CollateralCents))
}

// FormatCents renders an integer cent amount as a dollar string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
