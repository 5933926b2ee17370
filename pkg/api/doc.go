// Package api defines the wire-level types of the bookmart marketplace API:
// request and response payloads, domain objects, and the structured error
// envelope shared by the auth layer and the business endpoints.
package api
