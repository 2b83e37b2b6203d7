// Package postmark implements email.EmailSender on Postmark.
//
//	sender, err := postmark.New(postmark.Config{
//		ServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		AccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:  "hello@onedesigner.app",
//		SupportEmail: "support@onedesigner.app",
//	})
//
// Every email tracks opens and HTML link clicks. Tags travel as Postmark
// metadata. API errors are joined with email.ErrFailedToSendEmail.
package postmark
