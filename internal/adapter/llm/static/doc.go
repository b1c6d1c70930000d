// Package static provides a mock analyzer that returns a canned,
// pre-determined response. This is useful for dry runs and for testing the
// pipeline without making live API calls.
package static
