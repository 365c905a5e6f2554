// Package notify sends customer SMS and email through the remote authority.
//
// The gateway is chosen per tenant: an enabled company gateway first, then
// the platform gateway when the company allows it. The client only builds
// and posts the payload; delivery is the authority's job.
package notify
