// Package marketplace implements the OneDesigner marketplace: client and
// designer accounts, designer review, briefs, AI assisted matches, credit
// unlocks and project requests.
//
// Service holds the rules and talks to storage through Repository, which
// has a Postgres implementation in pgrepo and MemoryRepository for
// development and tests. Emails go through a Notifier; a failed email is
// logged and never fails the operation that triggered it.
//
// Credits are prepaid. UnlockMatch spends one credit in the same
// transaction that marks the match unlocked, and unlocking an already
// unlocked match is free. Designers answer project requests within
// Config.RequestTTL; ExpireProjectRequests runs periodically to close the
// ones they ignore.
package marketplace
