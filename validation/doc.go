// Package validation gates inbound payloads before they reach storage.
// Validators check required text, bounded email and phone patterns, and
// reference existence, in that order, stopping at the first failure.
package validation
