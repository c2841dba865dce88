// Package middleware contains the Huma middleware that fronts the
// coordination layer: caller identity resolution and request admission.
package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// identityHeader carries the identity resolved by the upstream auth layer.
// When present it is used as-is; anonymous callers fall back to a hash of
// their network identity.
const identityHeader = "X-User-ID"

// CallerIdentity returns the rate limiting identity for a request.
func CallerIdentity(ctx huma.Context) string {
	if id := ctx.Header(identityHeader); id != "" {
		return id
	}

	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return "anon:" + hex.EncodeToString(hash[:])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
