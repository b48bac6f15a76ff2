// Package registry provides the static catalogue of model identifiers
// advertised by GET /models.
package registry
