package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// GenerateRunID creates a unique, time-ordered run ID.
// Format: run-<timestamp>-<hash>
// Example: run-20251021T143052Z-a3f9c2
func GenerateRunID(timestamp time.Time, prID string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%d", prID, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// GenerateViolationID creates a unique ID for a stored violation.
// Index is zero-padded to 4 digits so IDs sort in report order.
func GenerateViolationID(runID string, index int) string {
	return fmt.Sprintf("violation-%s-%04d", runID, index)
}

// CalculateConfigHash creates a deterministic hash of a configuration,
// so runs can be traced back to the settings that produced them.
// The input should be JSON-serializable.
func CalculateConfigHash(config interface{}) (string, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
