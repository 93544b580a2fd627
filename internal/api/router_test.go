package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ingredient-parser/internal/api/handlers/health"
	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/core/lemmatizer"
	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/infrastructure/itemrepo"
	"ingredient-parser/internal/infrastructure/kvstore"
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Version: "test"},
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Parser: config.ParserConfig{
			ConfidenceThreshold: 0.7,
			MaxBatchSize:        3,
		},
		DedupWindow: time.Minute,
	}
}

type testServer struct {
	router http.Handler
	items  *itemrepo.MemoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store := kvstore.NewMemoryStore(10)
	items := itemrepo.NewMemoryRepository()
	classifier := category.NewClassifier(ctx, lemmatizer.New(), category.WithStore(store))
	p := parser.New(classifier, parser.WithItemRepository(items))

	router := SetupRouter(testConfig(), Dependencies{
		Parser:     p,
		Classifier: classifier,
		Health: health.NewHandler("test",
			health.WithDependency("learning_store", store),
			health.WithDependency("items", items),
			health.WithStoreStats(store.Stats),
			health.WithItemCount(items.Count),
		),
	})
	return &testServer{router: router, items: items}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestParseEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients/parse", gin.H{"text": "n. 800g jauhelihaa"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var result parser.Result
	decode(t, w, &result)
	assert.Equal(t, "800 g", result.Amount)
	assert.Equal(t, "jauhelihaa", result.ItemName)
	assert.Equal(t, category.Meat, result.Category)
	assert.Equal(t, parser.SourceRegex, result.Source)
	assert.True(t, result.Metadata.IsApproximate)
}

func TestParseEndpoint_InvalidOptions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients/parse", gin.H{
		"text":    "maitoa",
		"options": gin.H{"confidence_threshold": 1.5},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp common.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, common.ErrCodeInvalidRequest, resp.Code)
}

func TestParseEndpoint_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/parse", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseBatchEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients/parse/batch", gin.H{
		"lines": []string{"1,5 dl kermaa", "   ", "2-3 kpl omena"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []parser.Result `json:"results"`
		Count   int             `json:"count"`
	}
	decode(t, w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "1,5 dl", resp.Results[0].Amount)
	assert.Equal(t, "3 kpl", resp.Results[1].Amount)

	w = s.do(t, http.MethodPost, "/api/v1/ingredients/parse/batch", gin.H{
		"lines": []string{"a", "b", "c", "d"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIngredientEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients", gin.H{"text": "n. 800g jauhelihaa"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Result     parser.Result     `json:"result"`
		Ingredient common.Ingredient `json:"ingredient"`
	}
	decode(t, w, &resp)
	require.NotNil(t, resp.Ingredient.Item)
	assert.Equal(t, "jauhelihaa", resp.Ingredient.Item.Name)
	assert.Equal(t, "800 g", resp.Ingredient.Amount)
	assert.Equal(t, 1, resp.Ingredient.Item.UsageCount)

	// 相同名稱沿用既有商品
	w = s.do(t, http.MethodPost, "/api/v1/ingredients", gin.H{"text": "200 g jauhelihaa"})
	require.Equal(t, http.StatusCreated, w.Code)

	var second struct {
		Ingredient common.Ingredient `json:"ingredient"`
	}
	decode(t, w, &second)
	assert.Equal(t, resp.Ingredient.Item.ID, second.Ingredient.Item.ID)
	assert.Equal(t, 2, second.Ingredient.Item.UsageCount)

	n, err := s.items.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateIngredientEndpoint_EmptyName(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients", gin.H{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp common.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, common.ErrCodeEmptyIngredient, resp.Code)
}

func TestCreateIngredientEndpoint_Deduplicated(t *testing.T) {
	s := newTestServer(t)

	body := gin.H{"text": "maitoa"}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/ingredients", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/v1/ingredients", body).Code)
}

func TestMergeEndpoint(t *testing.T) {
	s := newTestServer(t)

	item := &common.Item{ID: uuid.New(), Name: "maito"}
	existing := []common.Ingredient{{ID: uuid.New(), Item: item, Amount: "2 dl", IsCollected: true}}
	incoming := []common.Ingredient{
		{ID: uuid.New(), Item: item, Amount: "4 dl"},
		{ID: uuid.New(), Item: &common.Item{ID: uuid.New(), Name: "voi"}, Amount: "1 pkt"},
	}

	w := s.do(t, http.MethodPost, "/api/v1/ingredients/merge", gin.H{"existing": existing, "incoming": incoming})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ingredients []common.Ingredient `json:"ingredients"`
		Summary     struct {
			Merged int `json:"merged"`
			Added  int `json:"added"`
			Total  int `json:"total"`
		} `json:"summary"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, "6 dl", resp.Ingredients[0].Amount)
	assert.True(t, resp.Ingredients[0].IsCollected)
	assert.Equal(t, 1, resp.Summary.Merged)
	assert.Equal(t, 1, resp.Summary.Added)
	assert.Equal(t, 2, resp.Summary.Total)
}

func TestMergeAmountsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/amounts/merge", gin.H{"a": "500 g", "b": "1 kg"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "1,5 kg", resp["amount"])
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Categories []category.Category `json:"categories"`
	}
	decode(t, w, &list)
	assert.Equal(t, category.All(), list.Categories)

	w = s.do(t, http.MethodPost, "/api/v1/categories/detect", gin.H{"name": "xyzzy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"other"`)

	w = s.do(t, http.MethodPost, "/api/v1/categories/learn", gin.H{"name": "Xyzzy", "category": "Snacks"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"xyzzy","category":"snacks","persisted":true}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/categories/detect", gin.H{"name": "xyzzy"})
	assert.Contains(t, w.Body.String(), `"category":"snacks"`)

	w = s.do(t, http.MethodGet, "/api/v1/categories/snacks/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":"snacks","items":["xyzzy"]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/categories/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats category.Statistics
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.TotalEntries)

	w = s.do(t, http.MethodDelete, "/api/v1/categories/learning", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/categories/detect", gin.H{"name": "xyzzy"})
	assert.Contains(t, w.Body.String(), `"category":"other"`)
}

func TestCategoryEndpoints_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/categories/learn", gin.H{"name": "maito", "category": "candy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeUnknownCategory)

	w = s.do(t, http.MethodPost, "/api/v1/categories/learn", gin.H{"category": "dairy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/categories/candy/items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp health.HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	require.NotNil(t, resp.Items)
	assert.Equal(t, 0, *resp.Items)
	assert.Equal(t, "memory", resp.Learning["backend"])

	w = s.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"learning_store":"ok","items":"ok"}}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
