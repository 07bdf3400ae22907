package logger

import (
	"net/url"
	"regexp"
	"strings"
)

var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"dsn",
	"authorization",
}

var dsnPasswordPattern = regexp.MustCompile(`(?i)(password=)([^\s]+)`)

// MaskDSN hides credentials in database connection strings. URL-style DSNs keep
// the user and host; keyword-style DSNs keep every key but password.
func MaskDSN(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if u, err := url.Parse(value); err == nil && u.Scheme != "" && u.User != nil {
		if pass, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), maskLast4(pass))
			return u.String()
		}
		return value
	}
	return dsnPasswordPattern.ReplaceAllStringFunc(value, func(match string) string {
		parts := dsnPasswordPattern.FindStringSubmatch(match)
		return parts[1] + maskLast4(parts[2])
	})
}

// MaskJSON returns a deep-copied map with sensitive fields masked.
func MaskJSON(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		if isSensitiveKey(key) {
			out[key] = maskValue(value)
			continue
		}
		out[key] = maskJSONValue(value)
	}
	return out
}

func maskJSONValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return MaskJSON(typed)
	case []any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, maskJSONValue(entry))
		}
		return items
	default:
		return value
	}
}

func maskValue(value any) any {
	switch typed := value.(type) {
	case string:
		return maskLast4(typed)
	case []byte:
		return maskLast4(string(typed))
	default:
		return "****"
	}
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****" + value
	}
	return "****" + value[len(value)-4:]
}
