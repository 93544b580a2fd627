package parser

import (
	"math"
	"regexp"
	"strings"

	"ingredient-parser/internal/pkg/common"
)

// amountMatch 數量步驟的結果
type amountMatch struct {
	pattern          string
	amount           string
	redundantMeasure string
	packageSize      string
	approximate      bool
	confidence       float64
}

// extractApproximate 移除開頭的約略標記（n.、noin、ca.）
func extractApproximate(text string) (string, bool) {
	loc := approximatePattern.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[loc[1]:], true
}

// extractAmount 依優先順序嘗試開頭的數量樣式
func extractAmount(text string) (amountMatch, string, bool) {
	for _, p := range amountPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		match := amountMatch{pattern: p.name, confidence: p.confidence}
		switch p.name {
		case "range-redundant":
			value, ok := rangeMax(m[1], m[2])
			if !ok {
				continue
			}
			match.amount = formatQuantity(value, "")
			match.redundantMeasure = strings.TrimSpace(m[3])
		case "range-unit", "range":
			value, ok := rangeMax(m[1], m[2])
			if !ok {
				continue
			}
			unit := ""
			if len(m) > 3 {
				unit = m[3]
			}
			match.amount = formatQuantity(value, unit)
		case "package":
			value, ok := common.ParseNumber(m[1])
			if !ok {
				continue
			}
			match.amount = formatQuantity(value, m[2])
			match.packageSize = strings.TrimSpace(m[3])
		default:
			value, ok := common.ParseNumber(m[1])
			if !ok {
				continue
			}
			match.amount = formatQuantity(value, m[2])
		}
		return match, text[len(m[0]):], true
	}
	return amountMatch{}, text, false
}

// extractEmbeddedAmount 在名稱中間尋找數量並從名稱移除
func extractEmbeddedAmount(text string) (amountMatch, string, bool) {
	loc := embeddedPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return amountMatch{}, text, false
	}

	value, ok := common.ParseNumber(text[loc[6]:loc[7]])
	if !ok {
		return amountMatch{}, text, false
	}

	match := amountMatch{
		pattern:     "embedded",
		amount:      formatQuantity(value, text[loc[8]:loc[9]]),
		approximate: loc[4] >= 0,
		confidence:  0.15,
	}
	return match, text[:loc[2]] + " " + text[loc[3]:], true
}

// rangeMax 範圍一律取較大的值
func rangeMax(low, high string) (float64, bool) {
	a, okA := common.ParseNumber(low)
	b, okB := common.ParseNumber(high)
	if !okA || !okB {
		return 0, false
	}
	return math.Max(math.Abs(a), math.Abs(b)), true
}

func formatQuantity(value float64, unit string) string {
	s := common.FormatDecimal(math.Abs(value))
	if unit = strings.ToLower(strings.TrimSpace(unit)); unit != "" {
		s += " " + unit
	}
	return s
}

// extractBrand 尋找主要品牌，緊接的子品牌或第二個主要品牌一併取出
func extractBrand(text string) (brand, subBrand, rest string, ok bool) {
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		main := lookupWord(mainBrands, tok)
		if main == "" {
			continue
		}

		end := i + 1
		brand = main
		if end < len(tokens) {
			if sub := lookupWord(subBrands, tokens[end]); sub != "" {
				subBrand = sub
				end++
			} else if second := lookupWord(mainBrands, tokens[end]); second != "" {
				brand = main + " " + second
				end++
			}
		}

		remaining := append(append([]string(nil), tokens[:i]...), tokens[end:]...)
		return brand, subBrand, strings.Join(remaining, " "), true
	}
	return "", "", text, false
}

func lookupWord(vocabulary []string, token string) string {
	token = strings.Trim(token, ",.;:")
	for _, word := range vocabulary {
		if strings.EqualFold(word, token) {
			return word
		}
	}
	return ""
}

// extractTemperature 取出溫度狀態（可帶括號）
func extractTemperature(text string) (string, string, bool) {
	values, rest := cutAll(temperaturePattern, text, 1, 2)
	if len(values) == 0 {
		return "", text, false
	}
	return strings.ToLower(values[0]), rest, true
}

// extractUnnecessaryMetadata 移除所有替代建議括號，只保留最後一個作為 metadata
func extractUnnecessaryMetadata(text string) (string, string, bool) {
	var (
		last    string
		found   bool
		builder strings.Builder
		prev    int
	)
	for _, loc := range parentheticalPattern.FindAllStringSubmatchIndex(text, -1) {
		inner := text[loc[2]:loc[3]]
		if !unnecessaryPattern.MatchString(inner) {
			continue
		}
		builder.WriteString(text[prev:loc[0]])
		builder.WriteString(" ")
		prev = loc[1]
		last = strings.TrimSpace(inner)
		found = true
	}
	if !found {
		return "", text, false
	}
	builder.WriteString(text[prev:])
	return last, builder.String(), true
}

// extractPreparation 取出處理方式，多個時以逗號分隔
func extractPreparation(text string) (string, string, bool) {
	values, rest := cutAll(preparationPattern, text, 1, 2)
	if len(values) == 0 {
		return "", text, false
	}

	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(v)
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return strings.Join(unique, ", "), rest, true
}

// cutAll 反覆移除 spanGroup 的片段，回傳每次 valueGroup 的值
func cutAll(re *regexp.Regexp, text string, spanGroup, valueGroup int) ([]string, string) {
	var values []string
	rest := text
	for {
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil {
			return values, rest
		}
		start, end := loc[2*spanGroup], loc[2*spanGroup+1]
		if start < 0 || end <= start {
			return values, rest
		}
		values = append(values, rest[loc[2*valueGroup]:loc[2*valueGroup+1]])
		rest = rest[:start] + " " + rest[end:]
	}
}

// cleanName 整理剩下的名稱
func cleanName(text string) string {
	s := emptyParensPattern.ReplaceAllString(text, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.Trim(s, " ,;")
	s = loneLeadingAPattern.ReplaceAllString(s, "")
	s = danglingConjunction.ReplaceAllString(s, "")
	return strings.Trim(s, " ,;")
}

// isPlaceholder 使用者輸入的不確定文字
func isPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range placeholderTexts {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
