package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"strconv"
	"strings"
	"time"
)

const (
	WebhookIDHeader        = "svix-id"
	WebhookTimestampHeader = "svix-timestamp"
	WebhookSignatureHeader = "svix-signature"

	webhookSecretPrefix = "whsec_"
	webhookTolerance    = 5 * time.Minute
)

// WebhookSignatureVerification checks identity provider webhooks signed with
// HMAC-SHA256 over "id.timestamp.body". The signature header may carry several
// space separated "v1,<base64>" entries during secret rotation.
func WebhookSignatureVerification(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	key := decodeWebhookSecret(secret)
	now := time.Now

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				log.Warn("Webhook received but no signing secret is configured", "path", r.URL.Path)
				reject(w, log, r, apperrors.Unavailable("Webhook receiver"))
				return
			}

			msgID := r.Header.Get(WebhookIDHeader)
			timestamp := r.Header.Get(WebhookTimestampHeader)
			signatures := r.Header.Get(WebhookSignatureHeader)

			if msgID == "" || timestamp == "" || signatures == "" {
				rejectWebhook(w, log, r, "Missing webhook signature headers")
				return
			}

			if !timestampWithinTolerance(timestamp, now()) {
				rejectWebhook(w, log, r, "Webhook timestamp outside tolerance")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				rejectWebhook(w, log, r, "Failed to read request body")
				return
			}

			if !verifyWebhookSignature(key, msgID, timestamp, body, signatures) {
				rejectWebhook(w, log, r, "Invalid webhook signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignWebhook produces the signature header value for a payload.
func SignWebhook(secret, msgID, timestamp string, body []byte) string {
	return "v1," + computeWebhookSignature(decodeWebhookSecret(secret), msgID, timestamp, body)
}

func decodeWebhookSecret(secret string) []byte {
	trimmed, found := strings.CutPrefix(secret, webhookSecretPrefix)
	if !found {
		return []byte(secret)
	}
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return []byte(secret)
	}
	return key
}

func timestampWithinTolerance(value string, now time.Time) bool {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	diff := now.Sub(time.Unix(seconds, 0))
	if diff < 0 {
		diff = -diff
	}
	return diff <= webhookTolerance
}

func computeWebhookSignature(key []byte, msgID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func verifyWebhookSignature(key []byte, msgID, timestamp string, body []byte, header string) bool {
	expected := []byte(computeWebhookSignature(key, msgID, timestamp, body))

	for _, entry := range strings.Fields(header) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal(expected, []byte(sig)) {
			return true
		}
	}
	return false
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return body, nil
}

func rejectWebhook(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Identity webhook verification failed",
		"request_id", RequestIDFrom(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	reject(w, log, r, apperrors.Unauthorized("Unauthorized"))
}
