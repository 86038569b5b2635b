package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"drively-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookHandler processes payment-provider events that credit wallets.
type WebhookHandler struct {
	DB            *gorm.DB
	WebhookSecret string
}

type providerEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID             string            `json:"id"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// HandleWebhook POST /api/v1/payments/webhook — raw body, signature verification, then process.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Pay-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("payments webhook received empty body (ensure no global body parser consumes the webhook body)")
		return c.Status(400).SendString("Webhook Error: empty body")
	}

	if err := verifySignature(rawBody, sig, wh.WebhookSecret); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("payments webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event providerEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("payments webhook JSON parse failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			return c.Status(200).SendString("ok")
		}

		// Domain errors still return 200 so the provider stops retrying.
		if err := wh.handlePaymentIntentSucceeded(pi, event.ID, rawBody); err != nil {
			log.Warn().Err(err).Str("intent", pi.ID).Msg("wallet top-up not applied")
			return c.Status(200).SendString("ok")
		}
	}

	return c.Status(200).SendString("ok")
}

func (wh *WebhookHandler) handlePaymentIntentSucceeded(pi paymentIntentObject, eventID string, rawBody []byte) error {
	accountIDStr := pi.Metadata["account_id"]
	if accountIDStr == "" {
		return nil // not a wallet top-up, skip silently
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil
	}
	if pi.AmountReceived <= 0 {
		return nil
	}

	return wh.DB.Transaction(func(tx *gorm.DB) error {
		// Idempotency: an already-recorded intent is a retry.
		var existing domain.WalletTopUp
		if err := tx.Where("payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
			return nil
		}

		topUp := domain.WalletTopUp{
			PaymentIntentID: pi.ID,
			ProviderEventID: eventID,
			AccountID:       accountID,
			AmountCents:     pi.AmountReceived,
			Currency:        pi.Currency,
			Status:          pi.Status,
			RawPayload:      datatypes.JSON(rawBody),
		}
		if err := tx.Create(&topUp).Error; err != nil {
			return err
		}

		return creditWalletInTransaction(tx, accountID, pi.AmountReceived)
	})
}

// creditWalletInTransaction deposits into the wallet, creating it on first top-up.
func creditWalletInTransaction(tx *gorm.DB, accountID uuid.UUID, amountCents int64) error {
	var w domain.Wallet
	err := tx.Where("account_id = ?", accountID).First(&w).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&domain.Wallet{AccountID: accountID, BalanceCents: amountCents}).Error
	}
	if err != nil {
		return err
	}
	w.BalanceCents += amountCents
	return tx.Save(&w).Error
}

// verifySignature verifies the Pay-Signature header ("t=<unix>,v1=<hmac>")
// using the webhook secret.
func verifySignature(payload []byte, sigHeader, secret string) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string

	parts := strings.Split(sigHeader, ",")
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	signedPayload := timestamp + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expectedSig)) {
			// Check tolerance (5 minutes)
			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return errors.New("invalid timestamp")
			}
			diff := time.Now().Unix() - ts
			if diff < 0 {
				diff = -diff
			}
			if diff > 300 {
				return errors.New("timestamp too old")
			}
			return nil
		}
	}

	return errors.New("signature mismatch")
}
