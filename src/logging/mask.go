// SPDX-License-Identifier: MIT

package logging

import "strings"

// MaskEmail masks an email address: "user@example.com" -> "u***@e***.com".
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	maskedUser := string(parts[0][0]) + "***"
	domainParts := strings.Split(parts[1], ".")
	if len(domainParts) >= 2 {
		return maskedUser + "@" + string(domainParts[0][0]) + "***." + domainParts[len(domainParts)-1]
	}
	return maskedUser + "@***"
}

// MaskIP masks an IP address: "192.168.1.100" -> "192.168.xxx.xxx".
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}
	if parts := strings.Split(ip, "."); len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) >= 4 {
			return parts[0] + ":" + parts[1] + ":xxxx:xxxx:..."
		}
	}
	return ip
}

// SanitizeLogFields masks sensitive field values before they reach a log
// sink, queries themselves are not masked (they're the product), but
// anything that looks like an identity or secret is.
func SanitizeLogFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	sanitized := make(map[string]any, len(fields))
	for k, v := range fields {
		switch strings.ToLower(k) {
		case "email":
			if s, ok := v.(string); ok {
				sanitized[k] = MaskEmail(s)
				continue
			}
			sanitized[k] = "***"
		case "password", "secret", "token", "api_key", "apikey", "secret_key":
			sanitized[k] = "[REDACTED]"
		case "ip", "remote_addr", "client_ip":
			if s, ok := v.(string); ok {
				sanitized[k] = MaskIP(s)
				continue
			}
			sanitized[k] = "***"
		default:
			sanitized[k] = v
		}
	}
	return sanitized
}
