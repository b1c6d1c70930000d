// Package prioritize classifies changed files for analysis ordering and
// estimates their token cost.
package prioritize

import (
	"regexp"

	"github.com/juspay/yama-sub000/internal/domain"
)

// Rule maps a path pattern to a priority. Patterns are matched
// case-insensitively against the full file path.
type Rule struct {
	Pattern  *regexp.Regexp
	Priority domain.Priority
}

// DefaultRules is the ordered rule list applied by the prioritizer. The first
// matching rule wins; unmatched paths are medium priority. The list is data so
// deployments can replace it wholesale.
var DefaultRules = []Rule{
	// Security-sensitive code is analyzed first.
	{Pattern: regexp.MustCompile(`(?i)auth`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)security`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)crypt`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)(credential|secret|token|password)`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)(payment|billing|checkout)`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)admin`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)(^|/)api/`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)middleware`), Priority: domain.PriorityHigh},
	{Pattern: regexp.MustCompile(`(?i)(session|permission|acl)`), Priority: domain.PriorityHigh},

	// Low-signal files go last.
	{Pattern: regexp.MustCompile(`(?i)\.(md|rst|txt)$`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)(^|/)docs?/`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)(package-lock\.json|yarn\.lock|pnpm-lock\.yaml|go\.sum|cargo\.lock|gemfile\.lock)$`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)(\.test\.|\.spec\.|_test\.go$|(^|/)tests?/|(^|/)__tests__/)`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg|ico|webp|woff2?|ttf|eot)$`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)\.(snap|min\.js|min\.css)$`), Priority: domain.PriorityLow},
	{Pattern: regexp.MustCompile(`(?i)(^|/)(dist|build|vendor|node_modules)/`), Priority: domain.PriorityLow},
}

// Classify returns the priority of a path under the given rules.
// The high-priority rules are consulted before low-priority ones by list
// order, so a test file under an auth/ directory still ranks high.
func Classify(rules []Rule, path string) domain.Priority {
	for _, rule := range rules {
		if rule.Pattern.MatchString(path) {
			return rule.Priority
		}
	}
	return domain.PriorityMedium
}
