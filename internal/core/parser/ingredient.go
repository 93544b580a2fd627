package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyItemName 解析結果沒有商品名稱
	ErrEmptyItemName = errors.New("parsed result has no item name")
	// ErrNoItemRepository 沒有設定商品資料庫
	ErrNoItemRepository = errors.New("item repository not configured")
)

// ItemRepository 商品資料庫
//
// FindByName 以不分大小寫的完全相同名稱查詢，可能回傳零、一或多筆。
type ItemRepository interface {
	FindByName(ctx context.Context, name string) ([]common.Item, error)
	Add(ctx context.Context, item common.Item) error
	Update(ctx context.Context, item common.Item) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// CreateIngredient 依解析結果查詢或建立商品，回傳新的食材
//
// 只有恰好一筆相符時才沿用既有商品；多筆相符視為找不到。
func (p *Parser) CreateIngredient(ctx context.Context, result Result) (*common.Ingredient, error) {
	if p.items == nil {
		return nil, ErrNoItemRepository
	}

	name := strings.TrimSpace(result.ItemName)
	if name == "" {
		return nil, ErrEmptyItemName
	}

	matches, err := p.items.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up item %q: %w", name, err)
	}

	var item common.Item
	if len(matches) == 1 {
		item, err = p.reuseItem(ctx, matches[0], result)
		if err != nil {
			return nil, err
		}
	} else {
		if len(matches) > 1 {
			common.LogDebug("商品名稱有多筆相符，建立新商品",
				zap.String("name", name),
				zap.Int("matches", len(matches)),
			)
		}
		item, err = p.addItem(ctx, name, result)
		if err != nil {
			return nil, err
		}
	}

	return &common.Ingredient{
		ID:     uuid.New(),
		Item:   &item,
		Amount: result.Amount,
	}, nil
}

func (p *Parser) reuseItem(ctx context.Context, item common.Item, result Result) (common.Item, error) {
	if err := p.items.IncrementUsage(ctx, item.ID); err != nil {
		return common.Item{}, fmt.Errorf("failed to increment item usage: %w", err)
	}
	item.UsageCount++

	// 舊資料沒有分類時補上
	if item.Category == "" && result.Category != "" {
		item.Category = string(result.Category)
		item.UpdatedAt = p.now()
		if err := p.items.Update(ctx, item); err != nil {
			return common.Item{}, fmt.Errorf("failed to update item: %w", err)
		}
	}
	return item, nil
}

func (p *Parser) addItem(ctx context.Context, name string, result Result) (common.Item, error) {
	now := p.now()
	item := common.Item{
		ID:         uuid.New(),
		Name:       name,
		Category:   string(result.Category),
		UsageCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.items.Add(ctx, item); err != nil {
		return common.Item{}, fmt.Errorf("failed to add item: %w", err)
	}

	common.LogInfo("已建立新商品",
		zap.String("id", item.ID.String()),
		zap.String("name", item.Name),
		zap.String("category", item.Category),
	)
	return item, nil
}
