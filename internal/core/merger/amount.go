package merger

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"ingredient-parser/internal/pkg/common"
)

// ParsedAmount 解析後的數量
type ParsedAmount struct {
	Value    float64
	Unit     string
	Original string
}

var (
	approximatePrefix = regexp.MustCompile(`^(?:noin\s+|n\.\s*|ca\.?\s*|~\s*)`)

	// 帶分數、分數、小數、整數，可選範圍與緊接或以空白分隔的單位
	amountPattern = regexp.MustCompile(`^(-?(?:\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?))(?:\s*[-–]\s*(\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?))?\s*(\p{L}+)?\.?$`)

	embeddedAmountPattern = regexp.MustCompile(`(?:^|\s)((?:noin\s+|n\.\s*|ca\.?\s*)?\d+(?:[.,]\d+)?\s*(?:kg|mg|g|dl|cl|ml|l|kpl|prk|pkt|pss|rkl|tl))(?:\s|$)`)
)

// ParseAmount 解析數量字串，例如 "1,5 dl"、"n. 800g"、"1 1/2 kpl"
func ParseAmount(text string) (ParsedAmount, bool) {
	original := strings.TrimSpace(text)
	s := strings.ToLower(original)
	s = strings.TrimSpace(approximatePrefix.ReplaceAllString(s, ""))
	if s == "" {
		return ParsedAmount{}, false
	}

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return ParsedAmount{}, false
	}

	value, ok := common.ParseNumber(m[1])
	if !ok {
		return ParsedAmount{}, false
	}
	if m[2] != "" {
		if upper, ok := common.ParseNumber(m[2]); ok && upper > value {
			value = upper
		}
	}

	return ParsedAmount{
		Value:    math.Abs(value),
		Unit:     canonicalUnit(m[3]),
		Original: original,
	}, true
}

// extractEmbeddedAmount 從商品名稱中找出數量，例如 "n. 800g jauheliha"
func extractEmbeddedAmount(name string) string {
	m := embeddedAmountPattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// formatValue 計數單位四捨五入為整數，其他以逗號小數輸出
func formatValue(value float64, counting bool) string {
	if counting {
		return strconv.FormatFloat(math.Round(value), 'f', 0, 64)
	}
	return common.FormatDecimal(value)
}

// formatAmount 組合數值與單位
func formatAmount(value float64, unit string) string {
	if unit == "" {
		return formatValue(value, false)
	}
	return formatValue(value, isCountingUnit(unit)) + " " + unit
}
