// Package openapi builds prompt schemas from OpenAPI 3 operations using
// kin-openapi. Each scalar property of the JSON request body becomes a field.
package openapi
