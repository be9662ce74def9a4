// Package middleware holds the Fiber middleware shared by every feature.
//
//   - rayid: tags each request with an X-Ray-ID (incoming or a fresh UUID) so
//     log lines from one request can be joined.
//   - auth: rejects requests without the configured API key. Paths in the
//     skip list, such as the Prometheus scrape endpoint, stay open.
//
// The start command installs rayid before the request logger and auth after
// it, so rejected requests are still logged with their ray id.
package middleware
