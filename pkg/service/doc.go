// Package service implements the marketplace business rules: customer
// accounts, book listings, and purchases. Services sit between the HTTP
// handlers and the storage layer; domain violations are reported as
// *api.APIError values with stable machine codes, infrastructure failures
// as wrapped errors.
package service
