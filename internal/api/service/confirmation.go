package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"reviewhub/internal/api/models"
)

// Confirmation codes are stateless: an HMAC over a snapshot of the user's
// mutable identity fields, keyed by the server secret. Nothing is stored;
// any code matching the current snapshot verifies. Issuing a token updates
// last_login, which rotates the snapshot and retires all earlier codes.
func ConfirmationCode(secret string, user *models.User) string {
	lastLogin := "never"
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.UTC().Format("2006-01-02T15:04:05.000000000")
	}
	snapshot := fmt.Sprintf("%s|%s|%s|%s", user.ID, user.Username, user.Email, lastLogin)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(snapshot))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// CheckConfirmationCode verifies a code against the user's current snapshot.
func CheckConfirmationCode(secret string, user *models.User, code string) bool {
	return hmac.Equal([]byte(ConfirmationCode(secret, user)), []byte(code))
}
