// Package webhook exposes the cleaner over HTTP: a signed POST that starts a
// pass, a status endpoint and, optionally, Prometheus metrics.
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body size checked (413 if too large)
//  3. HMAC-SHA256 of the body compared in constant time with the
//     signature header (403 on any mismatch, no details)
//  4. A pass is started in the background
//  5. 202 Accepted returned with {"run_id": "..."}, or 409 if a pass is
//     already running
//
// The body itself is not interpreted. Any payload works as long as it is
// signed, so CI systems can post their own event JSON.
//
// # Configuration
//
//	webhook:
//	  enabled: true
//	  listen: "127.0.0.1:8081"
//	  path: /webhook/clean
//	  secret: ${CLEANER_WEBHOOK_SECRET}
//	  signature_header: X-Hub-Signature-256
//	  max_body_size: 64KB
package webhook
