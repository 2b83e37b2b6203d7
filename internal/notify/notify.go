package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/email/templates"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

// Mailer queues rendered emails for delivery. *email.Service implements it.
type Mailer interface {
	QueueTemplate(ctx context.Context, params email.SendEmailParams, component templ.Component, opts ...queue.EnqueueOption) error
}

// Email tags, also used as provider tags for analytics.
const (
	TagDesignerApplication   = "designer_application"
	TagAdminNewApplication   = "admin_new_application"
	TagDesignerApproved      = "designer_approved"
	TagDesignerRejected      = "designer_rejected"
	TagClientWelcome         = "client_welcome"
	TagMatchesReady          = "matches_ready"
	TagProjectRequest        = "project_request"
	TagProjectRequestOK      = "project_request_approved"
	TagProjectRequestDecline = "project_request_declined"
	TagProjectRequestExpired = "project_request_expired"
	TagCreditsPurchased      = "credits_purchased"
	TagLoginCode             = "otp"
)

// Notifier renders marketplace events into emails and queues them.
type Notifier struct {
	mailer Mailer
	cfg    Config
	logger *slog.Logger
}

var _ marketplace.Notifier = (*Notifier)(nil)

type Option func(*Notifier)

func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

func New(mailer Mailer, cfg Config, opts ...Option) *Notifier {
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	if cfg.ProductName == "" {
		cfg.ProductName = "OneDesigner"
	}
	n := &Notifier{
		mailer: mailer,
		cfg:    cfg,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) DesignerApplicationReceived(ctx context.Context, d marketplace.Designer) error {
	return n.queue(ctx, mail{
		to:      d.Email,
		subject: "We received your application",
		tag:     TagDesignerApplication,
		text: fmt.Sprintf("%s\n\nThanks for applying to %s. Our team reviews every profile by hand and will get back to you within 48 hours.",
			greeting(d.FirstName), n.cfg.ProductName),
		body: []templ.Component{
			templates.Header("Application received", "Thanks for applying to "+n.cfg.ProductName),
			templates.Text(greeting(d.FirstName)),
			templates.Text("Our team reviews every profile by hand. You will hear from us within 48 hours."),
			templates.KeyValue(
				[2]string{"Title", d.Title},
				[2]string{"Styles", strings.Join(d.Styles, ", ")},
				[2]string{"Availability", d.Availability},
			),
		},
	})
}

func (n *Notifier) AdminNewApplication(ctx context.Context, d marketplace.Designer) error {
	if n.cfg.AdminEmail == "" {
		n.logger.DebugContext(ctx, "admin email not configured, skipping alert", logger.Component("notify"))
		return nil
	}
	link := n.link("/admin/designers/" + d.ID.String())
	return n.queue(ctx, mail{
		to:      n.cfg.AdminEmail,
		subject: "New designer application: " + displayName(d.FullName()),
		tag:     TagAdminNewApplication,
		text:    fmt.Sprintf("%s (%s) applied as %s.\n\nReview: %s", displayName(d.FullName()), d.Email, d.Title, link),
		body: []templ.Component{
			templates.Header("New designer application", displayName(d.FullName())),
			templates.KeyValue(
				[2]string{"Email", d.Email},
				[2]string{"Title", d.Title},
				[2]string{"Location", location(d)},
				[2]string{"Experience", fmt.Sprintf("%d years", d.YearsExperience)},
				[2]string{"Portfolio", d.PortfolioURL},
			),
			templates.PrimaryButton("Review application", link),
		},
	})
}

func (n *Notifier) DesignerApproved(ctx context.Context, d marketplace.Designer) error {
	link := n.link("/designer/dashboard")
	return n.queue(ctx, mail{
		to:      d.Email,
		subject: "You're approved on " + n.cfg.ProductName,
		tag:     TagDesignerApproved,
		text: fmt.Sprintf("%s\n\nYour profile is live. Clients can now be matched with you.\n\nDashboard: %s",
			greeting(d.FirstName), link),
		body: []templ.Component{
			templates.Header("Welcome aboard", "Your profile is live"),
			templates.Text(greeting(d.FirstName)),
			templates.Text("Clients can now be matched with you. Project requests will show up in your dashboard and inbox."),
			templates.PrimaryButton("Open dashboard", link),
		},
	})
}

func (n *Notifier) DesignerRejected(ctx context.Context, d marketplace.Designer) error {
	reason := d.RejectionReason
	if reason == "" {
		reason = "Your profile does not match what our clients are looking for right now."
	}
	return n.queue(ctx, mail{
		to:      d.Email,
		subject: "Update on your " + n.cfg.ProductName + " application",
		tag:     TagDesignerRejected,
		text: fmt.Sprintf("%s\n\nThank you for applying. We are not able to approve your profile at this time.\n\nFeedback: %s",
			greeting(d.FirstName), reason),
		body: []templ.Component{
			templates.Header("Application update", ""),
			templates.Text(greeting(d.FirstName)),
			templates.Text("Thank you for applying. We are not able to approve your profile at this time."),
			templates.KeyValue([2]string{"Feedback", reason}),
			templates.TextSecondary("You are welcome to apply again once your portfolio has been updated."),
		},
	})
}

func (n *Notifier) ClientWelcome(ctx context.Context, c marketplace.Client) error {
	link := n.link("/brief")
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: "Welcome to " + n.cfg.ProductName,
		tag:     TagClientWelcome,
		text:    fmt.Sprintf("%s\n\nTell us about your project and we will find the right designer.\n\nStart a brief: %s", greeting(c.Name), link),
		body: []templ.Component{
			templates.Header("Welcome to "+n.cfg.ProductName, "Hand-picked designers for your project"),
			templates.Text(greeting(c.Name)),
			templates.Text("Tell us about your project and we will match you with vetted designers."),
			templates.PrimaryButton("Start a brief", link),
		},
	})
}

func (n *Notifier) MatchesReady(ctx context.Context, c marketplace.Client, b marketplace.Brief, matches int) error {
	link := n.link("/client/briefs/" + b.ID.String())
	noun := "designers"
	if matches == 1 {
		noun = "designer"
	}
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: fmt.Sprintf("%d %s matched to your brief", matches, noun),
		tag:     TagMatchesReady,
		text:    fmt.Sprintf("%s\n\nWe found %d %s for your %s project.\n\nSee matches: %s", greeting(c.Name), matches, noun, b.ProjectType, link),
		body: []templ.Component{
			templates.Header("Your matches are ready", fmt.Sprintf("%d %s for your %s project", matches, noun, b.ProjectType)),
			templates.Text(greeting(c.Name)),
			templates.KeyValue(
				[2]string{"Project", b.ProjectType},
				[2]string{"Industry", b.Industry},
				[2]string{"Timeline", b.Timeline},
			),
			templates.PrimaryButton("See matches", link),
		},
	}, queue.WithPriority(queue.PriorityHigh))
}

func (n *Notifier) ProjectRequestReceived(ctx context.Context, d marketplace.Designer, b marketplace.Brief, r marketplace.ProjectRequest) error {
	link := n.link("/designer/requests/" + r.ID.String())
	return n.queue(ctx, mail{
		to:      d.Email,
		subject: "New project request: " + b.ProjectType,
		tag:     TagProjectRequest,
		text: fmt.Sprintf("%s\n\nA client wants to work with you on a %s project in %s.\n\n%q\n\nRespond by %s: %s",
			greeting(d.FirstName), b.ProjectType, b.Industry, r.Message, formatTime(r.ExpiresAt), link),
		body: []templ.Component{
			templates.Header("New project request", b.ProjectType+" for "+b.Industry),
			templates.Text(greeting(d.FirstName)),
			templates.Text(r.Message),
			templates.KeyValue(
				[2]string{"Budget", budget(b)},
				[2]string{"Timeline", b.Timeline},
				[2]string{"Respond by", formatTime(r.ExpiresAt)},
			),
			templates.PrimaryButton("Respond", link),
		},
	}, queue.WithPriority(queue.PriorityHigh))
}

func (n *Notifier) ProjectRequestApproved(ctx context.Context, c marketplace.Client, d marketplace.Designer, r marketplace.ProjectRequest) error {
	name := displayName(d.FullName())
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: name + " accepted your project request",
		tag:     TagProjectRequestOK,
		text:    fmt.Sprintf("%s\n\n%s accepted your request and will reach out at %s.\n\n%s", greeting(c.Name), name, c.Email, r.ResponseMessage),
		body: []templ.Component{
			templates.Header("Request accepted", name+" wants to work with you"),
			templates.Text(greeting(c.Name)),
			optionalText(r.ResponseMessage),
			templates.KeyValue(
				[2]string{"Designer", name},
				[2]string{"Email", d.Email},
				[2]string{"Portfolio", d.PortfolioURL},
			),
			templates.TextSecondary("The designer now has your contact details and will be in touch shortly."),
		},
	})
}

func (n *Notifier) ProjectRequestDeclined(ctx context.Context, c marketplace.Client, d marketplace.Designer, r marketplace.ProjectRequest) error {
	name := displayName(d.FirstName)
	link := n.link("/client/dashboard")
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: name + " is not available for your project",
		tag:     TagProjectRequestDecline,
		text:    fmt.Sprintf("%s\n\n%s declined your request.\n\n%s\n\nDashboard: %s", greeting(c.Name), name, r.ResponseMessage, link),
		body: []templ.Component{
			templates.Header("Request declined", name+" is not available right now"),
			templates.Text(greeting(c.Name)),
			optionalText(r.ResponseMessage),
			templates.Text("Your other matches are still waiting in your dashboard."),
			templates.PrimaryButton("View matches", link),
		},
	})
}

func (n *Notifier) ProjectRequestExpired(ctx context.Context, c marketplace.Client, d marketplace.Designer, r marketplace.ProjectRequest) error {
	name := displayName(d.FirstName)
	link := n.link("/client/dashboard")
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: "Your request to " + name + " expired",
		tag:     TagProjectRequestExpired,
		text:    fmt.Sprintf("%s\n\n%s did not respond before %s. You can send a new request from your dashboard: %s", greeting(c.Name), name, formatTime(r.ExpiresAt), link),
		body: []templ.Component{
			templates.Header("Request expired", ""),
			templates.Text(greeting(c.Name)),
			templates.Text(fmt.Sprintf("%s did not respond before %s.", name, formatTime(r.ExpiresAt))),
			templates.Text("You can send a new request or reach out to your other matches."),
			templates.PrimaryButton("Open dashboard", link),
		},
	})
}

func (n *Notifier) CreditsPurchased(ctx context.Context, c marketplace.Client, p marketplace.CreditPurchase) error {
	amount := money(p.AmountCents)
	return n.queue(ctx, mail{
		to:      c.Email,
		subject: fmt.Sprintf("Receipt: %d match credits", p.Credits),
		tag:     TagCreditsPurchased,
		text: fmt.Sprintf("%s\n\nThanks for your purchase.\n\nOrder: %s\nCredits: %d\nAmount: %s\nBalance: %d",
			greeting(c.Name), p.OrderID, p.Credits, amount, c.MatchCredits),
		body: []templ.Component{
			templates.Header("Thanks for your purchase", ""),
			templates.Text(greeting(c.Name)),
			templates.KeyValue(
				[2]string{"Order", p.OrderID},
				[2]string{"Credits", fmt.Sprintf("%d", p.Credits)},
				[2]string{"Amount", amount},
				[2]string{"Balance", fmt.Sprintf("%d credits", c.MatchCredits)},
			),
			templates.PrimaryButton("Unlock designers", n.link("/client/dashboard")),
		},
	})
}

// LoginCode sends a one-time sign-in code. It is queued with high priority.
func (n *Notifier) LoginCode(ctx context.Context, to, code string, ttl time.Duration) error {
	minutes := int(ttl.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return n.queue(ctx, mail{
		to:      to,
		subject: fmt.Sprintf("Your %s sign-in code: %s", n.cfg.ProductName, code),
		tag:     TagLoginCode,
		text:    fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, minutes),
		body: []templ.Component{
			templates.Header("Your sign-in code", ""),
			templates.OTP(code),
			templates.TextSecondary(fmt.Sprintf("The code expires in %d minutes. If you did not try to sign in, ignore this email.", minutes)),
		},
	})
}

type mail struct {
	to      string
	subject string
	tag     string
	text    string
	body    []templ.Component
}

func (n *Notifier) queue(ctx context.Context, m mail, opts ...queue.EnqueueOption) error {
	children := append(m.body, templates.Footer(n.cfg.ProductName+" · "+n.cfg.AppURL))
	params := email.SendEmailParams{
		SendTo:   m.to,
		Subject:  m.subject,
		BodyText: m.text,
		Tag:      m.tag,
	}
	if err := n.mailer.QueueTemplate(ctx, params, templates.Layout(m.subject, children...), opts...); err != nil {
		return fmt.Errorf("queue %s email: %w", m.tag, err)
	}
	n.logger.DebugContext(ctx, "email queued",
		logger.Component("notify"),
		logger.Event(m.tag),
		logger.Email(m.to))
	return nil
}

func (n *Notifier) link(path string) string {
	return n.cfg.AppURL + path
}

// displayName title-cases a name typed in lower case and keeps mixed case
// such as "McKay" intact.
func displayName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || s != strings.ToLower(s) {
		return s
	}
	return cases.Title(language.English).String(s)
}

func greeting(name string) string {
	name = displayName(name)
	if name == "" {
		return "Hi there,"
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		name = name[:i]
	}
	return "Hi " + name + ","
}

func location(d marketplace.Designer) string {
	switch {
	case d.City != "" && d.Country != "":
		return d.City + ", " + d.Country
	case d.City != "":
		return d.City
	}
	return d.Country
}

func budget(b marketplace.Brief) string {
	p := message.NewPrinter(language.English)
	if b.BudgetMax <= 0 {
		return p.Sprintf("from $%d/h", b.BudgetMin)
	}
	return p.Sprintf("$%d-$%d/h", b.BudgetMin, b.BudgetMax)
}

func money(cents int) string {
	return message.NewPrinter(language.English).Sprintf("$%.2f", float64(cents)/100)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}

func optionalText(s string) templ.Component {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return templates.Text(s)
}
