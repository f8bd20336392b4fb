// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Use cases depend on the Validator interface so input checking stays uniform
// and testable. The concrete implementation wraps go-playground/validator v10
// with English translations.
package validator
