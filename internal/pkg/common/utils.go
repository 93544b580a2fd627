package common

import "strings"

// NormalizeName 名稱正規化：小寫並去除前後空白
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
