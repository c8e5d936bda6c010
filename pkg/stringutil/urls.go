package stringutil

import "net/url"

// IsURLShaped reports whether raw is an absolute http(s) URL with a host.
func IsURLShaped(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
