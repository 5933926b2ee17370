// Package transport provides HTTP-level plumbing shared by all routes:
// error response writing with the canonical status mapping, and the
// request ID, panic recovery, and access logging middleware.
package transport
