// Package payments grants match credits from Lemon Squeezy order webhooks.
//
// Each delivery is authenticated with the hex HMAC-SHA256 of the raw body
// in the X-Signature header. A paid order_created event for a configured
// credit pack variant adds credits to the client named in the checkout
// custom data:
//
//	wh, err := payments.NewWebhook(payments.Config{
//		WebhookSecret: secret,
//		CreditPacks:   map[string]int{"123456": 3, "123457": 10},
//	}, marketplaceService)
//	res, err := wh.Handle(ctx, body, r.Header.Get(payments.SignatureHeader))
//
// Credits are applied once per order id, so redelivered webhooks are safe.
package payments
