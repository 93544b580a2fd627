package common

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber 解析整數、逗號或點號小數、分數（1/2）與帶分數（1 1/2）
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	if s == "" {
		return 0, false
	}

	var value float64
	switch {
	case strings.Contains(s, " "):
		parts := strings.Fields(s)
		if len(parts) != 2 {
			return 0, false
		}
		whole, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		frac, ok := parseFraction(parts[1])
		if !ok {
			return 0, false
		}
		value = whole + frac
	case strings.Contains(s, "/"):
		frac, ok := parseFraction(s)
		if !ok {
			return 0, false
		}
		value = frac
	default:
		v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		value = v
	}

	if negative {
		value = -value
	}
	return value, true
}

func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

// FormatDecimal 以逗號作為小數點輸出；小於 1 的值保留三位小數，其餘兩位，去除尾端的 0
func FormatDecimal(value float64) string {
	decimals := 2
	if math.Abs(value) < 1 {
		decimals = 3
	}
	s := strconv.FormatFloat(value, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return strings.Replace(s, ".", ",", 1)
}
