package auth

import (
	"net/url"
	"strings"
	"unicode"
)

// RedirectParam is the query parameter carrying the post-login destination.
const RedirectParam = "redirectTo"

// SafeRedirectTarget returns target when it is a same-origin absolute path,
// and fallback otherwise.
//
// Accepted values start with exactly one "/" followed by something other
// than "/" or "\". Anything that parses with a scheme or host, or that
// contains control characters, is replaced.
func SafeRedirectTarget(target, fallback string) string {
	if len(target) < 2 || target[0] != '/' || target[1] == '/' || target[1] == '\\' {
		return fallback
	}
	if strings.IndexFunc(target, unicode.IsControl) >= 0 {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return target
}
