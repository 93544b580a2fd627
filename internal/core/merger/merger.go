// Package merger 合併重複的食材並加總數量。
package merger

import (
	"math"
	"strings"

	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary 合併統計
type Summary struct {
	Merged int `json:"merged"`
	Added  int `json:"added"`
	Total  int `json:"total"`
}

// MergeIngredients 依商品 UUID 合併兩個食材清單
//
// 既有食材排在前面並保留其收集狀態；新食材的狀態在合併時捨棄。
func MergeIngredients(existing, incoming []common.Ingredient) []common.Ingredient {
	merged, _ := mergeLists(existing, incoming)
	return merged
}

// MergeSummary 回傳合併後的統計，不修改輸入
func MergeSummary(existing, incoming []common.Ingredient) Summary {
	_, summary := mergeLists(existing, incoming)
	return summary
}

// CanMerge 兩個食材指向同一個商品時可以合併
func CanMerge(a, b common.Ingredient) bool {
	idA, idB := a.ItemID(), b.ItemID()
	return idA != uuid.Nil && idA == idB
}

func mergeLists(existing, incoming []common.Ingredient) ([]common.Ingredient, Summary) {
	result := make([]common.Ingredient, 0, len(existing)+len(incoming))
	index := make(map[uuid.UUID]int, len(existing))

	for _, ing := range existing {
		if id := ing.ItemID(); id != uuid.Nil {
			if _, seen := index[id]; !seen {
				index[id] = len(result)
			}
		}
		result = append(result, ing)
	}

	var summary Summary
	for _, ing := range incoming {
		id := ing.ItemID()
		if pos, ok := index[id]; ok && id != uuid.Nil {
			target := result[pos]
			target.Amount = MergeAmounts(amountOf(target), amountOf(ing))
			target.Unit = ""
			result[pos] = target
			summary.Merged++

			common.LogDebug("合併食材",
				zap.String("item", target.ItemName()),
				zap.String("amount", target.Amount),
			)
			continue
		}

		if id != uuid.Nil {
			index[id] = len(result)
		}
		result = append(result, ing)
		summary.Added++
	}

	summary.Total = len(result)
	return result, summary
}

// amountOf 取得食材的數量；沒有數量時嘗試從商品名稱中取出
func amountOf(ing common.Ingredient) string {
	if amount := ing.AmountText(); amount != "" {
		return amount
	}
	return extractEmbeddedAmount(ing.ItemName())
}

// MergeAmounts 加總兩個數量字串
//
// 無法解析或單位不相容時以 " + " 串接原字串。
func MergeAmounts(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}

	pa, okA := ParseAmount(a)
	pb, okB := ParseAmount(b)
	if !okA || !okB {
		return concatAmounts(a, b)
	}

	if pa.Unit == "" && pb.Unit == "" {
		return formatValue(pa.Value+pb.Value, false)
	}
	if pa.Unit == "" || pb.Unit == "" {
		return concatAmounts(a, b)
	}

	convA, convB := conversionFor(pa.Unit), conversionFor(pb.Unit)
	if convA.BaseUnit != convB.BaseUnit {
		return concatAmounts(a, b)
	}

	total := pa.Value*convA.Factor + pb.Value*convB.Factor
	unit := displayUnit(total, convA.BaseUnit, pa.Unit, pb.Unit)
	return formatAmount(total/conversionFor(unit).Factor, unit)
}

// displayUnit 選擇輸出單位
func displayUnit(total float64, base, unitA, unitB string) string {
	switch base {
	case unitMilliliter:
		if total >= escalationThreshold {
			return unitLiter
		}
		if unitA == unitB {
			return unitA
		}
		if (unitA == unitDeciliter || unitB == unitDeciliter) && isMultiple(total, deciliterStep) {
			return unitDeciliter
		}
		return unitMilliliter
	case unitGram:
		if total >= escalationThreshold {
			return unitKilogram
		}
		if unitA == unitB {
			return unitA
		}
		return unitGram
	default:
		return base
	}
}

func isMultiple(value, step float64) bool {
	r := math.Mod(value, step)
	return r < 1e-9 || step-r < 1e-9
}

func concatAmounts(a, b string) string {
	return a + " + " + b
}
