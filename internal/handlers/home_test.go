package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goodsmarket/internal/models"
	"goodsmarket/internal/trending"
)

func TestHomeListsRecentProducts(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser("seller")
	env.createProduct(seller, "Fresh", 100)

	stale := models.Product{
		Name: "Stale", Price: 50, Amount: 1,
		Date: time.Now().AddDate(0, 0, -8), SellerID: seller.ID,
	}
	require.NoError(t, env.DB.Create(&stale).Error)

	rec := env.request(http.MethodGet, "/api", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.EqualValues(t, 1, body["count"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	require.Equal(t, "Fresh", results[0].(map[string]any)["name"])
	require.Equal(t, "You are not register", body["basket_url"])
}

// A name search ignores the recency window.
func TestHomeSearchByName(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser("seller")
	env.createProduct(seller, "Test Goods", 100)

	stale := models.Product{
		Name: "Old Goods", Price: 50, Amount: 1,
		Date: time.Now().AddDate(0, 0, -30), SellerID: seller.ID,
	}
	require.NoError(t, env.DB.Create(&stale).Error)

	rec := env.request(http.MethodGet, "/api?search=goods", nil)
	body := decodeBody(t, rec)
	require.EqualValues(t, 2, body["count"])

	rec = env.request(http.MethodGet, "/api?search=nomatch", nil)
	body = decodeBody(t, rec)
	require.EqualValues(t, 0, body["count"])
}

func TestHomePagination(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser("seller")
	for i := 0; i < 6; i++ {
		env.createProduct(seller, fmt.Sprintf("Goods%d", i), 100)
	}

	rec := env.request(http.MethodGet, "/api", nil)
	body := decodeBody(t, rec)
	require.EqualValues(t, 6, body["count"])
	require.Len(t, body["results"], 4)

	rec = env.request(http.MethodGet, "/api?page=2", nil)
	body = decodeBody(t, rec)
	require.Len(t, body["results"], 2)
}

func TestHomeBasketURLForAuthenticated(t *testing.T) {
	env := newTestEnv(t)

	buyer := env.createUser("buyer")
	basket := env.basketOf(buyer)

	rec := env.request(http.MethodGet, "/api", nil, env.accessCookie(buyer))
	body := decodeBody(t, rec)
	require.Equal(t, fmt.Sprintf("/api/basket/%d/", basket.ID), body["basket_url"])
}

func TestRecordSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api", map[string]string{"q": "laptops"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var search models.Search
	require.NoError(t, env.DB.First(&search).Error)
	require.Equal(t, "laptops", search.Q)

	rec = env.request(http.MethodPost, "/api", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionBoard(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser("curious")

	rec := env.request(http.MethodGet, "/api/question", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(http.MethodGet, "/api/question", nil, env.accessCookie(user))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec))

	rec = env.request(http.MethodPost, "/api/question", map[string]string{
		"text": "Is delivery available?",
	}, env.accessCookie(user))
	require.Equal(t, http.StatusCreated, rec.Code)

	var question models.Question
	require.NoError(t, env.DB.First(&question).Error)
	require.Equal(t, user.ID, question.UserID)
}

func TestTagsWithTrending(t *testing.T) {
	env := newTestEnv(t)

	seller := env.createUser("seller")
	env.createProduct(seller, "ThinkPad", 45000, "Laptops")
	env.createProduct(seller, "AirPods", 8000, "Earbuds")

	env.Trends.items = []trending.TrendItem{
		{Trend: "ТОП Продажів", Title: "MacBook", Price: "54 999"},
	}

	rec := env.request(http.MethodGet, "/api/tags/Laptops", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	top := body["top 10 on Rozetka"].([]any)
	require.Len(t, top, 1)
	require.Equal(t, "MacBook", top[0].(map[string]any)["title"])

	local := body["Our product"].(map[string]any)
	require.EqualValues(t, 1, local["count"])
	results := local["results"].([]any)
	require.Equal(t, "ThinkPad", results[0].(map[string]any)["name"])
}
