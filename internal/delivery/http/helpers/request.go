package helpers

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// unknownClientAddr is reported when no client address can be derived from the request.
const unknownClientAddr = "0.0.0.0"

// PathInt64 parses the named path value as a positive int64.
func PathInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ClientAddr returns the caller's address: the first X-Forwarded-For entry when present,
// otherwise the host part of RemoteAddr.
func ClientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return unknownClientAddr
}
