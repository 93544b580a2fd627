package parser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(opts ...Option) *Parser {
	return New(category.NewClassifier(context.Background(), nil), opts...)
}

func TestParse_Scenarios(t *testing.T) {
	p := newTestParser()
	ctx := context.Background()

	tests := []struct {
		name       string
		input      string
		amount     string
		brand      string
		itemName   string
		metadata   Metadata
		confidence float64
	}{
		{
			name:       "range resolves to maximum",
			input:      "2-3 kpl omena",
			amount:     "3 kpl",
			itemName:   "omena",
			confidence: 0.8,
		},
		{
			name:       "range with redundant measure",
			input:      "2-3 (500 g) omena",
			amount:     "3",
			itemName:   "omena",
			metadata:   Metadata{RedundantMeasure: "500 g"},
			confidence: 0.8,
		},
		{
			name:       "brand with sub-brand",
			input:      "Arla Lempi juusto",
			brand:      "Arla",
			itemName:   "juusto",
			metadata:   Metadata{SubBrand: "Lempi"},
			confidence: 0.85,
		},
		{
			name:       "two main brands form one brand",
			input:      "Valio Arla maito",
			brand:      "Valio Arla",
			itemName:   "maito",
			confidence: 0.7,
		},
		{
			name:       "decimal comma with unit",
			input:      "1,5 dl kermaa",
			amount:     "1,5 dl",
			itemName:   "kermaa",
			confidence: 0.9,
		},
		{
			name:       "decimal dot is output with comma",
			input:      "1.5 l maitoa",
			amount:     "1,5 l",
			itemName:   "maitoa",
			confidence: 0.9,
		},
		{
			name:       "fraction with unit",
			input:      "1/2 tl suolaa",
			amount:     "0,5 tl",
			itemName:   "suolaa",
			confidence: 0.9,
		},
		{
			name:       "fraction range without unit",
			input:      "1/2-1 sipulia",
			amount:     "1",
			itemName:   "sipulia",
			confidence: 0.85,
		},
		{
			name:       "package size kept as metadata",
			input:      "2 pkt (6 kpl/500 g) nakkeja",
			amount:     "2 pkt",
			itemName:   "nakkeja",
			metadata:   Metadata{PackageSize: "6 kpl/500 g"},
			confidence: 0.9,
		},
		{
			name:       "approximate marker and glued unit",
			input:      "n. 800g jauhelihaa",
			amount:     "800 g",
			itemName:   "jauhelihaa",
			metadata:   Metadata{IsApproximate: true},
			confidence: 0.85,
		},
		{
			name:       "embedded amount",
			input:      "Kanafilee n. 400g",
			amount:     "400 g",
			itemName:   "Kanafilee",
			metadata:   Metadata{IsApproximate: true},
			confidence: 0.85,
		},
		{
			name:       "embedded amount after hyphenated name",
			input:      "Coca-Cola 1,5 l",
			amount:     "1,5 l",
			itemName:   "Coca-Cola",
			confidence: 0.85,
		},
		{
			name:       "alternative suggestion removed",
			input:      "Valio maito (tai kaurajuoma)",
			brand:      "Valio",
			itemName:   "maito",
			metadata:   Metadata{UnnecessaryMetadata: "tai kaurajuoma"},
			confidence: 0.75,
		},
		{
			name:       "preparation",
			input:      "sipuli hienonnettuna",
			itemName:   "sipuli",
			metadata:   Metadata{Preparation: "hienonnettuna"},
			confidence: 0.75,
		},
		{
			name:       "several preparations and dangling conjunction",
			input:      "kuorittu ja kuutioitu peruna",
			itemName:   "peruna",
			metadata:   Metadata{Preparation: "kuorittu, kuutioitu"},
			confidence: 0.75,
		},
		{
			name:       "bare temperature",
			input:      "kylmää vettä",
			itemName:   "vettä",
			metadata:   Metadata{Temperature: "kylmää"},
			confidence: 0.65,
		},
		{
			name:       "parenthesized temperature",
			input:      "voi (huoneenlämpöinen)",
			itemName:   "voi",
			metadata:   Metadata{Temperature: "huoneenlämpöinen"},
			confidence: 0.65,
		},
		{
			name:       "negative amount coerced",
			input:      "-2 kpl omena",
			amount:     "2 kpl",
			itemName:   "omena",
			confidence: 0.75,
		},
		{
			name:       "ca prefix without space",
			input:      "ca.2 dl kermaa",
			amount:     "2 dl",
			itemName:   "kermaa",
			metadata:   Metadata{IsApproximate: true},
			confidence: 0.85,
		},
		{
			name:       "confidence capped",
			input:      "2,5 dl Valio Eila kylmä maito raastettuna (tai vastaava)",
			amount:     "2,5 dl",
			brand:      "Valio",
			itemName:   "maito",
			metadata: Metadata{
				SubBrand:            "Eila",
				Temperature:         "kylmä",
				Preparation:         "raastettuna",
				UnnecessaryMetadata: "tai vastaava",
			},
			confidence: 0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(ctx, tt.input, DefaultOptions())

			assert.Equal(t, tt.amount, result.Amount)
			assert.Equal(t, tt.brand, result.Brand)
			assert.Equal(t, tt.itemName, result.ItemName)
			assert.Equal(t, tt.metadata, result.Metadata)
			assert.InDelta(t, tt.confidence, result.Confidence, 1e-9)
			assert.Equal(t, tt.input, result.RawText)
			assert.Equal(t, SourceRegex, result.Source)
		})
	}
}

func TestParse_Category(t *testing.T) {
	p := newTestParser()
	ctx := context.Background()

	assert.Equal(t, category.FruitsVegetables, p.Parse(ctx, "2-3 kpl omena", DefaultOptions()).Category)
	assert.Equal(t, category.Dairy, p.Parse(ctx, "Arla Lempi juusto", DefaultOptions()).Category)
	assert.Equal(t, category.Meat, p.Parse(ctx, "n. 800g jauhelihaa", DefaultOptions()).Category)
	assert.Equal(t, category.Frozen, p.Parse(ctx, "300 g pakastemansikoita", DefaultOptions()).Category)
}

// 多個替代建議括號全部移除，但只保留最後一個
func TestParse_OnlyLastUnnecessaryMetadataIsKept(t *testing.T) {
	p := newTestParser()

	result := p.Parse(context.Background(), "kerma (tai maito) (esim. vastaava)", DefaultOptions())
	assert.Equal(t, "kerma", result.ItemName)
	assert.Equal(t, "esim. vastaava", result.Metadata.UnnecessaryMetadata)
}

func TestParse_PreparationInsideRemovedParentheticalIgnored(t *testing.T) {
	p := newTestParser()

	result := p.Parse(context.Background(), "kerma (tai raastettu juusto)", DefaultOptions())
	assert.Equal(t, "kerma", result.ItemName)
	assert.Empty(t, result.Metadata.Preparation)
}

func TestParse_EmptyInput(t *testing.T) {
	p := newTestParser()

	for _, input := range []string{"", "   "} {
		result := p.Parse(context.Background(), input, Options{UseAI: true})
		assert.Zero(t, result.Confidence)
		assert.Empty(t, result.ItemName)
		assert.Equal(t, category.Other, result.Category)
		assert.Equal(t, SourceRegex, result.Source)
	}
}

func TestParse_PlaceholderForcesLowConfidence(t *testing.T) {
	p := newTestParser()

	result := p.Parse(context.Background(), "2 dl jotain kastiketta", DefaultOptions())
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	assert.Equal(t, SourceRegex, result.Source)
}

type fakeAI struct {
	result *AIResult
	err    error
	calls  int
}

func (f *fakeAI) ParseIngredient(context.Context, string) (*AIResult, error) {
	f.calls++
	return f.result, f.err
}

func TestParse_AIFallback(t *testing.T) {
	ctx := context.Background()
	opts := Options{ConfidenceThreshold: 0.7, UseAI: true}

	t.Run("without provider is passthrough", func(t *testing.T) {
		result := newTestParser().Parse(ctx, "jotain", opts)
		assert.Equal(t, SourcePassthrough, result.Source)
		assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	})

	t.Run("provider result used", func(t *testing.T) {
		ai := &fakeAI{result: &AIResult{
			Amount:     "1 pkt",
			ItemName:   "mausteseos",
			Category:   "spices",
			Confidence: 0.99,
		}}
		result := newTestParser(WithAIFallback(ai)).Parse(ctx, "jotain maustetta tms", opts)

		assert.Equal(t, 1, ai.calls)
		assert.Equal(t, SourceAI, result.Source)
		assert.Equal(t, "1 pkt", result.Amount)
		assert.Equal(t, "mausteseos", result.ItemName)
		assert.Equal(t, category.Spices, result.Category)
		assert.InDelta(t, 0.95, result.Confidence, 1e-9)
	})

	t.Run("unknown category detected locally", func(t *testing.T) {
		ai := &fakeAI{result: &AIResult{ItemName: "maito", Category: "beverages", Confidence: 0.8}}
		result := newTestParser(WithAIFallback(ai)).Parse(ctx, "jotain", opts)
		assert.Equal(t, category.Dairy, result.Category)
	})

	t.Run("provider error degrades to passthrough", func(t *testing.T) {
		ai := &fakeAI{err: errors.New("timeout")}
		result := newTestParser(WithAIFallback(ai)).Parse(ctx, "jotain", opts)
		assert.Equal(t, 1, ai.calls)
		assert.Equal(t, SourcePassthrough, result.Source)
		assert.Equal(t, "jotain", result.ItemName)
	})

	t.Run("not called when disabled or confident", func(t *testing.T) {
		ai := &fakeAI{result: &AIResult{ItemName: "x"}}
		p := newTestParser(WithAIFallback(ai))

		assert.Equal(t, SourceRegex, p.Parse(ctx, "jotain", DefaultOptions()).Source)
		assert.Equal(t, SourceRegex, p.Parse(ctx, "2 kpl omena", opts).Source)
		assert.Zero(t, ai.calls)
	})
}

func TestParseRecipeIngredients(t *testing.T) {
	p := newTestParser()

	results := p.ParseRecipeIngredients(context.Background(), []string{"2 kpl omena", "  ", "", "1 l maitoa"}, DefaultOptions())
	require.Len(t, results, 2)
	assert.Equal(t, "omena", results[0].ItemName)
	assert.Equal(t, "1 l", results[1].Amount)

	assert.Empty(t, p.ParseRecipeIngredients(context.Background(), nil, DefaultOptions()))
}

// fakeRepository 測試用商品資料庫
type fakeRepository struct {
	mu         sync.Mutex
	items      []common.Item
	findErr    error
	added      int
	updated    int
	increments int
}

func (r *fakeRepository) FindByName(_ context.Context, name string) ([]common.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []common.Item
	for _, item := range r.items {
		if strings.EqualFold(item.Name, name) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepository) Add(_ context.Context, item common.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	r.added++
	return nil
}

func (r *fakeRepository) Update(_ context.Context, item common.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
		}
	}
	r.updated++
	return nil
}

func (r *fakeRepository) IncrementUsage(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].UsageCount++
		}
	}
	r.increments++
	return nil
}

func TestCreateIngredient_NewItem(t *testing.T) {
	repo := &fakeRepository{}
	p := newTestParser(WithItemRepository(repo))
	ctx := context.Background()

	ing, err := p.CreateIngredient(ctx, p.Parse(ctx, "2-3 kpl omena", DefaultOptions()))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ing.ID)
	require.NotNil(t, ing.Item)
	assert.Equal(t, "omena", ing.Item.Name)
	assert.Equal(t, string(category.FruitsVegetables), ing.Item.Category)
	assert.Equal(t, 1, ing.Item.UsageCount)
	assert.Equal(t, "3 kpl", ing.Amount)
	assert.Equal(t, 1, repo.added)
}

func TestCreateIngredient_ReusesSingleMatch(t *testing.T) {
	existing := common.Item{ID: uuid.New(), Name: "Omena", Category: "fruits-vegetables", UsageCount: 4}
	repo := &fakeRepository{items: []common.Item{existing}}
	p := newTestParser(WithItemRepository(repo))
	ctx := context.Background()

	ing, err := p.CreateIngredient(ctx, p.Parse(ctx, "1 kpl omena", DefaultOptions()))
	require.NoError(t, err)

	assert.Equal(t, existing.ID, ing.Item.ID)
	assert.Equal(t, 5, ing.Item.UsageCount)
	assert.Equal(t, 1, repo.increments)
	assert.Zero(t, repo.added)
	assert.Zero(t, repo.updated)
}

func TestCreateIngredient_FillsMissingCategory(t *testing.T) {
	existing := common.Item{ID: uuid.New(), Name: "maito"}
	repo := &fakeRepository{items: []common.Item{existing}}
	p := newTestParser(WithItemRepository(repo))
	ctx := context.Background()

	ing, err := p.CreateIngredient(ctx, p.Parse(ctx, "1 l maito", DefaultOptions()))
	require.NoError(t, err)

	assert.Equal(t, string(category.Dairy), ing.Item.Category)
	assert.Equal(t, 1, repo.updated)
}

func TestCreateIngredient_AmbiguousMatchCreatesNewItem(t *testing.T) {
	repo := &fakeRepository{items: []common.Item{
		{ID: uuid.New(), Name: "omena"},
		{ID: uuid.New(), Name: "OMENA"},
	}}
	p := newTestParser(WithItemRepository(repo))
	ctx := context.Background()

	ing, err := p.CreateIngredient(ctx, p.Parse(ctx, "omena", DefaultOptions()))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.added)
	assert.Zero(t, repo.increments)
	for _, item := range repo.items[:2] {
		assert.NotEqual(t, item.ID, ing.Item.ID)
	}
}

func TestCreateIngredient_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newTestParser().CreateIngredient(ctx, Result{ItemName: "omena"})
	assert.ErrorIs(t, err, ErrNoItemRepository)

	p := newTestParser(WithItemRepository(&fakeRepository{}))
	_, err = p.CreateIngredient(ctx, Result{ItemName: "  "})
	assert.ErrorIs(t, err, ErrEmptyItemName)

	lookupErr := errors.New("database is locked")
	p = newTestParser(WithItemRepository(&fakeRepository{findErr: lookupErr}))
	_, err = p.CreateIngredient(ctx, Result{ItemName: "omena"})
	assert.ErrorIs(t, err, lookupErr)
}
