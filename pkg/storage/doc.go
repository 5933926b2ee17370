// Package storage defines the persistence interfaces of the bookmart
// marketplace and the sentinel errors shared by their implementations.
//
// Two adapters exist: memory (tests and lightweight deployments) and
// postgres (production). Both also implement auth.PrincipalStore, exposing
// active customers as authenticatable principals.
package storage
