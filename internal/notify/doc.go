// Package notify turns marketplace events into transactional emails.
//
// Each event renders a templ layout from core/email/templates with an HTML
// body and a plain-text alternative, then queues it on the email queue so
// delivery is retried in the background:
//
//	n := notify.New(emailService, notify.Config{
//		AdminEmail: "team@onedesigner.app",
//		AppURL:     "https://onedesigner.app",
//	})
//	svc, err := marketplace.NewService(repo, marketplace.WithNotifier(n))
//
// Lower-case names are title-cased for greetings; names already typed with
// capitals are kept as given.
package notify
