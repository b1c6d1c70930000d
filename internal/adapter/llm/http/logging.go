package http

import (
	"fmt"
	"regexp"
)

// MaxLoggedResponseLength caps how much of a provider response may appear in
// logs. Responses carry user source code, so they never go to logs whole.
const MaxLoggedResponseLength = 200

// TruncateForLogging returns a log-safe prefix of a provider response.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

var urlSecretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`key=([^&"\s]+)`),
	regexp.MustCompile(`apiKey=([^&"\s]+)`),
	regexp.MustCompile(`api_key=([^&"\s]+)`),
	regexp.MustCompile(`token=([^&"\s]+)`),
	regexp.MustCompile(`access_token=([^&"\s]+)`),
}

// RedactURLSecrets scrubs API keys from URLs that surface in error messages,
// e.g. providers that authenticate via a ?key= query parameter.
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, re := range urlSecretPatterns {
		name := re.String()
		name = name[:len(name)-len(`=([^&"\s]+)`)]
		result = re.ReplaceAllString(result, name+"=[REDACTED]")
	}
	return result
}
