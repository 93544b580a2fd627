package common

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item 商品（食材背後的實體），以 ID 作為合併鍵
type Item struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ingredient 食材（購物清單或食譜中的一行）
type Ingredient struct {
	ID                   uuid.UUID `json:"id"`
	Item                 *Item     `json:"item"`
	Amount               string    `json:"amount"`
	Unit                 string    `json:"unit,omitempty"`
	IsCollected          bool      `json:"is_collected"`
	IsBeingCollected     bool      `json:"is_being_collected"`
	IsCollectedAsDefault bool      `json:"is_collected_as_default"`
}

// ItemID 回傳商品 ID，沒有商品時為 uuid.Nil
func (i Ingredient) ItemID() uuid.UUID {
	if i.Item == nil {
		return uuid.Nil
	}
	return i.Item.ID
}

// ItemName 回傳商品名稱
func (i Ingredient) ItemName() string {
	if i.Item == nil {
		return ""
	}
	return i.Item.Name
}

// AmountText 回傳數量與單位合併後的文字
func (i Ingredient) AmountText() string {
	amount := strings.TrimSpace(i.Amount)
	unit := strings.TrimSpace(i.Unit)
	switch {
	case unit == "":
		return amount
	case amount == "":
		return ""
	default:
		return amount + " " + unit
	}
}
