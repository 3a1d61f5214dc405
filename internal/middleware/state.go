package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"github.com/shipfastordie/shipboard/pkg/config"
)

// The OAuth state token is generated fresh per login flow and carried in
// an HMAC-signed cookie until the provider calls back. The callback
// handler rejects the flow when the returned state doesn't match the
// cookie, which shuts down forged callbacks.

const stateCookieName = "oauth_state"

type stateData struct {
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewStateToken returns a fresh random state value for one OAuth flow
func NewStateToken() string {
	return xid.New().String()
}

// SetStateCookie stores the state in a signed, short-lived cookie
func SetStateCookie(c *gin.Context, state string) error {
	data, err := json.Marshal(stateData{
		State:     state,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	})
	if err != nil {
		return err
	}

	encodedData := base64.URLEncoding.EncodeToString(data)
	signature := createSignature(encodedData)

	c.SetCookie(stateCookieName, signature+"."+encodedData, 600, "/", "", false, true)
	return nil
}

// VerifyStateCookie checks the callback state against the signed cookie
// and clears the cookie either way. It returns false on a missing,
// tampered or expired cookie, or on a state mismatch.
func VerifyStateCookie(c *gin.Context, state string) bool {
	cookie, err := c.Cookie(stateCookieName)
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)
	if err != nil || state == "" {
		return false
	}

	// Split cookie value (signature.data)
	parts := strings.Split(cookie, ".")
	if len(parts) != 2 {
		return false
	}

	signature, data := parts[0], parts[1]
	if !verifySignature(data, signature) {
		return false
	}

	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return false
	}

	var stored stateData
	if err := json.Unmarshal(decodedData, &stored); err != nil {
		return false
	}

	if time.Now().After(stored.ExpiresAt) {
		return false
	}

	return hmac.Equal([]byte(stored.State), []byte(state))
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.State.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}
