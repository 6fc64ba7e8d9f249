// Package device turns User-Agent headers into short labels for audit logs.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// MaxUserAgentLength bounds the header length that is parsed at all.
const MaxUserAgentLength = 512

// Describe returns "Browser on OS", e.g. "Firefox on Windows 10". Mobile
// clients report their platform instead of the OS string.
func Describe(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" || len(userAgent) > MaxUserAgentLength {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return browser + " on " + platform
		}
	}

	os := ua.OS()
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
