package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Header names set by Lemon Squeezy on webhook deliveries.
const (
	SignatureHeader = "X-Signature"
	EventHeader     = "X-Event-Name"
)

const EventOrderCreated = "order_created"

// Order is the part of an order_created event needed to grant credits.
type Order struct {
	Event      string
	OrderID    string
	ClientID   uuid.UUID
	VariantID  string
	TotalCents int
	Status     string
	Email      string
	TestMode   bool
}

// Paid reports whether the order was charged.
func (o Order) Paid() bool {
	return o.Status == "paid"
}

// Sign returns the hex HMAC-SHA256 of body, as sent in the X-Signature header.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the X-Signature header against body in constant time.
func VerifySignature(secret string, body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	expected := Sign(secret, body)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(signature)), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

type webhookPayload struct {
	Meta struct {
		EventName  string         `json:"event_name"`
		TestMode   bool           `json:"test_mode"`
		CustomData map[string]any `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Status         string `json:"status"`
			Total          int    `json:"total"`
			UserEmail      string `json:"user_email"`
			TestMode       bool   `json:"test_mode"`
			FirstOrderItem struct {
				VariantID json.Number `json:"variant_id"`
			} `json:"first_order_item"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseOrderCreated decodes an order webhook body. Events other than
// order_created decode with only Event set so callers can ignore them.
// ClientID stays uuid.Nil when custom data carries no valid client_id.
func ParseOrderCreated(body []byte) (*Order, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if p.Meta.EventName == "" {
		return nil, ErrInvalidPayload
	}

	o := &Order{Event: p.Meta.EventName}
	if o.Event != EventOrderCreated {
		return o, nil
	}

	attrs := p.Data.Attributes
	o.OrderID = strings.TrimSpace(p.Data.ID)
	o.VariantID = attrs.FirstOrderItem.VariantID.String()
	o.TotalCents = attrs.Total
	o.Status = attrs.Status
	o.Email = attrs.UserEmail
	o.TestMode = p.Meta.TestMode || attrs.TestMode
	if o.OrderID == "" || o.VariantID == "" {
		return nil, ErrInvalidPayload
	}
	if _, err := strconv.ParseInt(o.VariantID, 10, 64); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}

	raw, _ := p.Meta.CustomData["client_id"].(string)
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		o.ClientID = id
	}
	return o, nil
}
