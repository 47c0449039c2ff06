package middleware

import (
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
)

// Fingerprint derives a stable bucketing key from the client address, the
// authenticated user id and a hash of the user-agent string. It is a
// bucketing aid for rate limiting, not a security control: a client that
// rotates its user-agent lands in a different bucket. Anonymous requests use
// the "anonymous" sentinel so all unauthenticated traffic from one address
// shares a budget.
func Fingerprint(r *http.Request, userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("%s:%s:%d", clientIP(r), userID, hashUserAgent(r.UserAgent()))
}

// clientIP strips the port from RemoteAddr. RealIP middleware has already
// rewritten RemoteAddr from X-Forwarded-For when behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// hashUserAgent buckets the user-agent with FNV-1a. A missing user-agent
// hashes as the empty string.
func hashUserAgent(ua string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ua))
	return h.Sum32()
}
