// Package resend implements email.EmailSender on Resend, the primary
// OneDesigner email provider.
//
// Resend allows two requests per second on the default plan; pair the
// client with email.Service, which rate limits per provider.
package resend
