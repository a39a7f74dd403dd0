// Package sanitizer normalizes user supplied hotel and room data before it is
// validated and stored.
//
// Every function is idempotent and never fails: input that cannot be
// normalized comes back empty so the validator can reject it.
package sanitizer
