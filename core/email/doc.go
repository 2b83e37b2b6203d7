// Package email sends transactional email for OneDesigner.
//
// EmailSender is the provider contract; integration/email/resend,
// integration/email/postmark and integration/email/smtp implement it, and
// DevSender writes emails to disk during development.
//
// Service wraps a sender with three policies:
//
//   - a token bucket keyed "email:<provider>" so every instance stays under
//     the provider's API limit (two per second by default). An attempt that
//     finds the bucket empty waits for the next token instead of failing.
//   - retries with exponential backoff for transient failures. Invalid
//     parameters fail immediately.
//   - optional queueing through core/queue. Queued emails survive restarts
//     when the queue is backed by Postgres and are retried by the queue.
//
// # Basic Usage
//
// Load Config from the environment and build the service around a provider:
//
//	var cfg email.Config
//	config.MustLoad(&cfg)
//
//	sender, err := resend.New(resendCfg)
//	if err != nil {
//		return err
//	}
//	svc, err := email.NewServiceFromConfig(cfg, sender, email.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	err = svc.Send(ctx, email.SendEmailParams{
//		SendTo:   client.Email,
//		Subject:  "Welcome to OneDesigner",
//		BodyHTML: html,
//		Tag:      "welcome",
//	})
//
// Send blocks until the email is delivered, the attempt budget is spent or
// ctx is done. Errors wrap ErrFailedToSendEmail, ErrInvalidParams or
// ErrRateLimited, so callers branch with errors.Is.
//
// # Templates
//
// SendTemplate and QueueTemplate render a templ.Component into BodyHTML
// first. The building blocks live in core/email/templates:
//
//	err = svc.SendTemplate(ctx, email.SendEmailParams{
//		SendTo:  designer.Email,
//		Subject: "New project request",
//		Tag:     "project_request",
//	}, templates.Layout("New project request",
//		templates.Header("New project request", brief.ProjectType),
//		templates.PrimaryButton("Review request", dashboardURL),
//	))
//
// # Queueing
//
// With an Enqueuer the service can hand emails to the task queue instead of
// sending inline. The queue worker runs Handler, which makes one
// rate-limited attempt per task and leaves retries to the queue backoff:
//
//	svc, err := email.NewServiceFromConfig(cfg, sender,
//		email.WithEnqueuer(queueSvc.Enqueuer()),
//		email.WithRateLimiter(redisBucket),
//		email.WithLogger(log),
//	)
//	queueSvc.RegisterHandler(svc.Handler())
//
//	err = svc.QueueTemplate(ctx, email.SendEmailParams{
//		SendTo:  client.Email,
//		Subject: "Your login code",
//		Tag:     "otp",
//	}, templates.Layout("Your login code", templates.OTP(code)))
//
// Emails tagged otp, auth, magic_link, verification or password_reset are
// queued with high priority. Queue returns ErrQueueUnavailable when no
// Enqueuer was configured.
//
// # Shared Rate Limit
//
// The default limiter is in process. Several instances sharing one provider
// account should share a bucket through Redis:
//
//	store, _ := ratelimiter.NewRedisStore(redisClient)
//	bucket, _ := ratelimiter.NewBucket(store, ratelimiter.PerSecond(2))
//	svc, _ := email.NewServiceFromConfig(cfg, sender, email.WithRateLimiter(bucket))
//
// WithMaxRateWait bounds how long one attempt waits for a token.
//
// # Statistics
//
// Stats returns counters since the service was created. Sent counts
// delivered emails. Retried counts failed attempts that will be tried again,
// and Failed counts emails given up on, whether sent inline or through the
// queue. RateLimited counts attempts that had to wait for a token.
package email
