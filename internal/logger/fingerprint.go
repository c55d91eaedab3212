package logger

import (
	"crypto/sha256"
	"encoding/hex"
)

// SessionKey is the attribute name for a session fingerprint.
const SessionKey = "session"

// Fingerprint returns a short, stable digest of a session id. The raw id is
// the bearer of a portal session and never goes to the log.
func Fingerprint(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:6])
}
