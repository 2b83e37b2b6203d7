// Package api exposes the marketplace as a JSON HTTP API.
//
// Authentication is done by the gateway in front of the service, which
// forwards the caller identity in headers: X-Client-ID for clients,
// X-Designer-ID for designers and X-Admin-Token for the admin dashboard.
//
// Routes:
//
//	POST /api/clients                                register a client
//	GET  /api/clients/me/dashboard                   credits, briefs, matches, unlocked designers
//	POST /api/designers/apply                        designer application
//	GET  /api/designers/me/requests                  project requests for the designer
//	POST /api/designers/me/requests/{id}/respond     approve or decline a request
//	POST /api/briefs                                 submit a brief
//	POST /api/briefs/{id}/matches                    run matching
//	GET  /api/briefs/{id}/matches                    stored matches
//	POST /api/matches/{id}/unlock                    spend a credit on a match
//	POST /api/matches/{id}/request                   send a project request
//	GET  /api/admin/designers?status=                designer review queue
//	POST /api/admin/designers/{id}/approve
//	POST /api/admin/designers/{id}/reject
//	GET  /api/admin/stats
//	GET  /api/admin/email/stats
//	GET  /api/admin/queue/dead-letters
//	POST /api/hooks/auth-email                       sign-in code email, admin token
//	POST /api/webhooks/lemonsqueezy                  credit pack orders
//	GET  /health/live, /health/ready
//
// Registration and brief submission are rate limited per client IP.
// Panics are recovered by the router and rendered as 500.
package api
