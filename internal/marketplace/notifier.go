package marketplace

import "context"

// Notifier delivers the emails triggered by marketplace events.
// Failures are logged by the Service and never fail the operation.
type Notifier interface {
	DesignerApplicationReceived(ctx context.Context, d Designer) error
	AdminNewApplication(ctx context.Context, d Designer) error
	DesignerApproved(ctx context.Context, d Designer) error
	DesignerRejected(ctx context.Context, d Designer) error
	ClientWelcome(ctx context.Context, c Client) error
	MatchesReady(ctx context.Context, c Client, b Brief, matches int) error
	ProjectRequestReceived(ctx context.Context, d Designer, b Brief, r ProjectRequest) error
	ProjectRequestApproved(ctx context.Context, c Client, d Designer, r ProjectRequest) error
	ProjectRequestDeclined(ctx context.Context, c Client, d Designer, r ProjectRequest) error
	ProjectRequestExpired(ctx context.Context, c Client, d Designer, r ProjectRequest) error
	CreditsPurchased(ctx context.Context, c Client, p CreditPurchase) error
}

type nopNotifier struct{}

func (nopNotifier) DesignerApplicationReceived(context.Context, Designer) error { return nil }
func (nopNotifier) AdminNewApplication(context.Context, Designer) error         { return nil }
func (nopNotifier) DesignerApproved(context.Context, Designer) error            { return nil }
func (nopNotifier) DesignerRejected(context.Context, Designer) error            { return nil }
func (nopNotifier) ClientWelcome(context.Context, Client) error                 { return nil }
func (nopNotifier) MatchesReady(context.Context, Client, Brief, int) error      { return nil }
func (nopNotifier) ProjectRequestReceived(context.Context, Designer, Brief, ProjectRequest) error {
	return nil
}
func (nopNotifier) ProjectRequestApproved(context.Context, Client, Designer, ProjectRequest) error {
	return nil
}
func (nopNotifier) ProjectRequestDeclined(context.Context, Client, Designer, ProjectRequest) error {
	return nil
}
func (nopNotifier) ProjectRequestExpired(context.Context, Client, Designer, ProjectRequest) error {
	return nil
}
func (nopNotifier) CreditsPurchased(context.Context, Client, CreditPurchase) error { return nil }
