package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

// Credits grants credits for a paid order. *marketplace.Service implements
// it and sends the receipt email when credits are applied.
type Credits interface {
	AddCredits(ctx context.Context, clientID uuid.UUID, orderID string, credits, amountCents int) (*marketplace.CreditPurchase, bool, error)
}

// Result describes how a webhook delivery was handled.
type Result struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id,omitempty"`
	Credits int    `json:"credits,omitempty"`
	Applied bool   `json:"applied"`
	Ignored string `json:"ignored,omitempty"`
}

// Webhook verifies and applies Lemon Squeezy order webhooks.
type Webhook struct {
	cfg     Config
	credits Credits
	logger  *slog.Logger
}

type Option func(*Webhook)

func WithLogger(l *slog.Logger) Option {
	return func(w *Webhook) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWebhook(cfg Config, credits Credits, opts ...Option) (*Webhook, error) {
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret is required", ErrInvalidConfig)
	}
	if len(cfg.CreditPacks) == 0 {
		return nil, fmt.Errorf("%w: at least one credit pack is required", ErrInvalidConfig)
	}
	for variant, n := range cfg.CreditPacks {
		if n <= 0 {
			return nil, fmt.Errorf("%w: credit pack %s grants %d credits", ErrInvalidConfig, variant, n)
		}
	}
	if credits == nil {
		return nil, ErrNilCredits
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	w := &Webhook{
		cfg:     cfg,
		credits: credits,
		logger:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// MaxBodyBytes is the largest accepted delivery body.
func (w *Webhook) MaxBodyBytes() int64 {
	return w.cfg.MaxBodyBytes
}

// Handle verifies signature, decodes body and grants the credit pack.
// Unpaid orders and other events are acknowledged without changes.
func (w *Webhook) Handle(ctx context.Context, body []byte, signature string) (Result, error) {
	if err := VerifySignature(w.cfg.WebhookSecret, body, signature); err != nil {
		w.logger.WarnContext(ctx, "rejected webhook", logger.Component("payments"), logger.Error(err))
		return Result{}, err
	}

	order, err := ParseOrderCreated(body)
	if err != nil {
		return Result{}, err
	}
	res := Result{Event: order.Event, OrderID: order.OrderID}

	switch {
	case order.Event != EventOrderCreated:
		res.Ignored = "unsupported event"
		return res, nil
	case !order.Paid():
		res.Ignored = "order status " + order.Status
		return res, nil
	case order.TestMode && !w.cfg.AcceptTestMode:
		res.Ignored = "test mode order"
		return res, nil
	}
	if order.ClientID == uuid.Nil {
		return res, ErrMissingClientID
	}

	credits, ok := w.cfg.CreditPacks[order.VariantID]
	if !ok {
		w.logger.ErrorContext(ctx, "paid order for unknown variant",
			logger.Component("payments"),
			slog.String("order_id", order.OrderID),
			slog.String("variant_id", order.VariantID))
		return res, ErrUnknownVariant
	}
	res.Credits = credits

	_, applied, err := w.credits.AddCredits(ctx, order.ClientID, order.OrderID, credits, order.TotalCents)
	if err != nil {
		return res, fmt.Errorf("apply order %s: %w", order.OrderID, err)
	}
	res.Applied = applied

	w.logger.InfoContext(ctx, "order processed",
		logger.Component("payments"),
		logger.UserID(order.ClientID.String()),
		slog.String("order_id", order.OrderID),
		logger.Count("credits", credits),
		slog.Bool("applied", applied))
	return res, nil
}
