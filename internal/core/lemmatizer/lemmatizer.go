// Package lemmatizer 將芬蘭語食材詞彙還原為基本形。
//
// 查詢順序：例外字典（信心 1.0）、複合詞前綴（0.8）、
// 依類別去除詞尾（基準 0.5，每成功一類 +0.1，上限 0.9）。
package lemmatizer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	specialCaseConfidence = 1.0
	compoundConfidence    = 0.8
	baseConfidence        = 0.5
	stepConfidence        = 0.1
	maxRuleConfidence     = 0.9

	minKeywordLength = 3
)

// Result 詞形還原結果
type Result struct {
	OriginalWord string  `json:"original_word"`
	BasicForm    string  `json:"basic_form"`
	Confidence   float64 `json:"confidence"`
}

// Lemmatizer 芬蘭語詞形還原器，規則表為唯讀
type Lemmatizer struct {
	specialCases map[string]string
	categories   []ruleCategory
	stopWords    map[string]bool
}

// New 創建詞形還原器
func New() *Lemmatizer {
	return &Lemmatizer{
		specialCases: specialCases,
		categories:   inflectionCategories,
		stopWords:    stopWords,
	}
}

// normalize NFC 正規化、小寫、去除前後空白
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// LemmatizeWord 還原單一詞彙
func (l *Lemmatizer) LemmatizeWord(word string) Result {
	normalized := normalize(word)
	if normalized == "" {
		return Result{OriginalWord: word, BasicForm: word, Confidence: 0}
	}

	if lemma, ok := l.specialCases[normalized]; ok {
		return Result{OriginalWord: word, BasicForm: lemma, Confidence: specialCaseConfidence}
	}

	if m := compoundPrefixes.FindStringSubmatch(normalized); m != nil && utf8.RuneCountInString(m[1]) >= minKeywordLength {
		base := m[1]
		if lemma, ok := l.specialCases[base]; ok {
			base = lemma
		} else {
			base, _ = l.stripInflections(base)
		}
		return Result{OriginalWord: word, BasicForm: base, Confidence: compoundConfidence}
	}

	form, stripped := l.stripInflections(normalized)
	confidence := baseConfidence + float64(stripped)*stepConfidence
	if confidence > maxRuleConfidence {
		confidence = maxRuleConfidence
	}
	return Result{OriginalWord: word, BasicForm: form, Confidence: confidence}
}

// stripInflections 逐類別去除詞尾，回傳結果與成功的類別數
func (l *Lemmatizer) stripInflections(word string) (string, int) {
	stripped := 0
	for _, category := range l.categories {
		for _, r := range category.rules {
			if r.pattern.MatchString(word) {
				word = r.pattern.ReplaceAllString(word, r.replacement)
				stripped++
				break
			}
		}
	}
	return word, stripped
}

// LemmatizePhrase 逐詞還原，以空白連接
func (l *Lemmatizer) LemmatizePhrase(phrase string) string {
	tokens := strings.Fields(normalize(phrase))
	lemmas := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lemmas = append(lemmas, l.LemmatizeWord(token).BasicForm)
	}
	return strings.Join(lemmas, " ")
}

// ExtractKeyWords 擷取關鍵字：去除停用詞與過短詞，保留首次出現順序
func (l *Lemmatizer) ExtractKeyWords(phrase string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range strings.Fields(normalize(phrase)) {
		token = strings.Trim(token, ",.;:()")
		if token == "" || l.stopWords[token] {
			continue
		}
		lemma := l.LemmatizeWord(token).BasicForm
		if utf8.RuneCountInString(lemma) < minKeywordLength || l.stopWords[lemma] || seen[lemma] {
			continue
		}
		seen[lemma] = true
		keywords = append(keywords, lemma)
	}
	return keywords
}

// MostRelevantWord 取最長的關鍵字，沒有關鍵字時回傳整句的還原結果
func (l *Lemmatizer) MostRelevantWord(phrase string) string {
	keywords := l.ExtractKeyWords(phrase)
	if len(keywords) == 0 {
		return l.LemmatizePhrase(phrase)
	}

	best := keywords[0]
	for _, kw := range keywords[1:] {
		if utf8.RuneCountInString(kw) > utf8.RuneCountInString(best) {
			best = kw
		}
	}
	return best
}
