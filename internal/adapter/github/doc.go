// Package github publishes review results to GitHub pull requests.
//
// The adapter keeps the domain layer platform-agnostic: the Poster consumes
// domain.Violation values and maps them onto the Pull Request Reviews API,
// anchoring located violations as inline comments and collecting the rest
// into the review summary. Errors are mapped to the shared typed error so
// rate limits and transient failures are retried with backoff.
package github
