// Package sanitizer normalizes free-text input before validation and
// storage.
//
// All functions are idempotent and never fail. Deciding whether the
// result is acceptable is left to validation.
package sanitizer
