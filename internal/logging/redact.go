// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package logging

import "strings"

// MaskEmail hides most of the local part of an address before it is logged.
// "jane.doe@example.com" becomes "ja***@example.com".
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// MaskSecret reports whether a credential is set without revealing it.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}
