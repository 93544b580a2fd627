package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	numberExpr = `\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?`
	rangeSep   = `\s*[-–—]\s*`
	unitEnd    = `\.?(?:\s+|$)`
)

var unitExpr = alternation(unitVocabulary)

// amountPattern 數量樣式，依優先順序嘗試
type amountPattern struct {
	name       string
	re         *regexp.Regexp
	confidence float64
}

var (
	// (a) 範圍 + 括號內的重複量度："2-3 (500 g) omena"
	rangeRedundantPattern = regexp.MustCompile(`(?i)^(` + numberExpr + `)` + rangeSep + `(` + numberExpr + `)\s*\(\s*(\d[^()]*?)\s*\)\s*`)
	// (b) 範圍 + 單位："2-3 kpl omena"
	rangeUnitPattern = regexp.MustCompile(`(?i)^(` + numberExpr + `)` + rangeSep + `(` + numberExpr + `)\s*(` + unitExpr + `)` + unitEnd)
	// (c) 不含單位的（分數）範圍："1/2-1 sipulia"
	rangeBarePattern = regexp.MustCompile(`(?i)^(` + numberExpr + `)` + rangeSep + `(` + numberExpr + `)(?:\s+|$)`)
	// (d) 數量 + 包裝描述："2 pkt (6 kpl/500 g) nakkeja"
	packagePattern = regexp.MustCompile(`(?i)^-?(` + numberExpr + `)\s*(?:(` + unitExpr + `)\.?\s*)?\(\s*(\d[^()]*?)\s*\)\s*`)
	// (e) 逗號小數 + 單位
	decimalCommaPattern = regexp.MustCompile(`(?i)^-?(\d+,\d+)\s*(` + unitExpr + `)` + unitEnd)
	// (f) 點號小數 + 單位
	decimalDotPattern = regexp.MustCompile(`(?i)^-?(\d+\.\d+)\s*(` + unitExpr + `)` + unitEnd)
	// (g) 分數 + 單位
	fractionPattern = regexp.MustCompile(`(?i)^-?(\d+\s+\d+/\d+|\d+/\d+)\s*(` + unitExpr + `)` + unitEnd)
	// (h) 數字，單位可有可無
	plainPattern = regexp.MustCompile(`(?i)^-?(` + numberExpr + `)(?:\s*(` + unitExpr + `)\.?)?(?:\s+|$)`)

	// 名稱中間的數量："Kanafilee n. 400g"
	embeddedPattern = regexp.MustCompile(`(?i)(?:^|[\s(,])((noin\s+|n\.\s*|ca\.?\s*)?(` + numberExpr + `)\s*(` + unitExpr + `)\.?)(?:[\s),]|$)`)

	approximatePattern = regexp.MustCompile(`(?i)^(?:noin\s+|n\.\s*|ca\.\s*|ca\s+|~\s*)`)

	temperaturePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}(])(\(?(` + alternation(temperatureWords) + `)\)?)(?:[^\p{L}]|$)`)
	parentheticalPattern = regexp.MustCompile(`\(([^()]*)\)`)
	unnecessaryPattern   = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` + alternation(unnecessaryMarkers) + `)(?:[^\p{L}]|$)`)
	preparationPattern   = regexp.MustCompile(`(?i)(?:^|[^\p{L}])((` + alternation(preparationWords) + `))(?:[^\p{L}]|$)`)

	emptyParensPattern  = regexp.MustCompile(`\(\s*\)`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
	loneLeadingAPattern = regexp.MustCompile(`(?i)^a(?:\s+|$)`)
	danglingConjunction = regexp.MustCompile(`(?i)^(?:ja|sekä)\s+|\s+(?:ja|sekä)$`)
)

// amountPatterns 依序嘗試的前置數量樣式，(a) 與 (d) 另外處理括號內容
var amountPatterns = []amountPattern{
	{"range-redundant", rangeRedundantPattern, 0.2},
	{"range-unit", rangeUnitPattern, 0.2},
	{"range", rangeBarePattern, 0.15},
	{"package", packagePattern, 0.2},
	{"decimal-comma", decimalCommaPattern, 0.2},
	{"decimal-dot", decimalDotPattern, 0.2},
	{"fraction", fractionPattern, 0.2},
	{"plain", plainPattern, 0.15},
}

// alternation 將詞彙轉為正規表示式的選擇群組，較長的詞優先
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}
