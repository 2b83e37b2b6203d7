// Package clientip extracts the real client address from HTTP requests.
//
// Headers are checked in priority order: CF-Connecting-IP (Cloudflare),
// DO-Connecting-IP (DigitalOcean), X-Forwarded-For (leftmost entry) and
// X-Real-IP, then RemoteAddr. Addresses are validated with net/netip,
// IPv4-mapped IPv6 is unmapped, and 0.0.0.0 / :: are rejected.
//
//	key := "apply:" + clientip.GetIP(r)
//
// Only trust these headers when the service runs behind a proxy that sets them.
package clientip
