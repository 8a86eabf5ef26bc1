// Package common holds request helpers shared by the web and realtime layers.
package common

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const clientIpKey contextKey = "ClientIp"

// EnrichContext stores the originating client ip in the request context,
// preferring the first X-Forwarded-For entry over the socket address.
func EnrichContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIp(r)
		ctx := context.WithValue(r.Context(), clientIpKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIp returns the ip placed by EnrichContext, or "" when absent.
func GetClientIp(ctx context.Context) string {
	ip, _ := ctx.Value(clientIpKey).(string)
	return ip
}

func clientIp(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
