package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"goodsmarket/internal/auth"
	"goodsmarket/internal/config"
	"goodsmarket/internal/handlers"
	"goodsmarket/internal/hash"
	"goodsmarket/internal/models"
	"goodsmarket/internal/ratelimit"
	httpserver "goodsmarket/internal/transport/http"
	"goodsmarket/internal/trending"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []map[string]any
}

func (f *fakePublisher) Publish(_ context.Context, topic, _ string, event map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event["topic"] = topic
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type stubFetcher struct {
	items []trending.TrendItem
	calls int
}

func (s *stubFetcher) FetchTrending(_ context.Context, _ string) ([]trending.TrendItem, error) {
	s.calls++
	return s.items, nil
}

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *auth.TokenService
	Pub    *fakePublisher
	Trends *stubFetcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	tokens := &auth.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	pub := &fakePublisher{}
	trends := &stubFetcher{}

	e := echo.New()
	deps := httpserver.Deps{
		Auth:      &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: pub},
		Home:      &handlers.HomeHandler{DB: db},
		Questions: &handlers.QuestionHandler{DB: db},
		Details:   &handlers.DetailsHandler{DB: db, Producer: pub},
		Comments:  &handlers.CommentHandler{DB: db, Producer: pub},
		Baskets:   &handlers.BasketHandler{DB: db, Producer: pub},
		Products:  &handlers.ProductHandler{DB: db, Producer: pub},
		Tags:      &handlers.TagsHandler{DB: db, Trends: trends},
		Search:    &handlers.SearchHandler{},
		Tokens:    tokens,
		Limiter: ratelimit.New(ratelimit.Policy{
			AnonRate: rate.Inf, AnonBurst: 1,
			UserRate: rate.Inf, UserBurst: 1,
		}),
	}
	httpserver.Register(e, &deps)

	return &testEnv{T: t, E: e, DB: db, Tokens: tokens, Pub: pub, Trends: trends}
}

func (env *testEnv) request(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// createUser inserts a user together with their basket, the same pair
// registration produces.
func (env *testEnv) createUser(username string) models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)

	user := models.User{Username: username, PasswordHash: pwHash, Role: "user"}
	require.NoError(env.T, env.DB.Create(&user).Error)
	basket := models.Basket{UserID: user.ID, Active: true}
	require.NoError(env.T, env.DB.Create(&basket).Error)
	return user
}

func (env *testEnv) basketOf(user models.User) models.Basket {
	env.T.Helper()
	var basket models.Basket
	require.NoError(env.T, env.DB.Where("user_id = ?", user.ID).First(&basket).Error)
	return basket
}

func (env *testEnv) createProduct(seller models.User, name string, price int, tags ...string) models.Product {
	env.T.Helper()

	product := models.Product{
		Name:     name,
		Price:    price,
		URL:      name,
		Amount:   10,
		Date:     time.Now(),
		SellerID: seller.ID,
	}
	for _, tag := range tags {
		product.Tags = append(product.Tags, models.Tag{Name: tag})
	}
	require.NoError(env.T, env.DB.Create(&product).Error)
	return product
}

func (env *testEnv) createComment(author models.User, product models.Product, assess int, text string, date time.Time) models.Comment {
	env.T.Helper()

	comment := models.Comment{
		UserID:    author.ID,
		ProductID: product.ID,
		Assess:    assess,
		Text:      text,
		Date:      date,
	}
	require.NoError(env.T, env.DB.Create(&comment).Error)
	return comment
}

func (env *testEnv) accessCookie(user models.User) *http.Cookie {
	env.T.Helper()
	token, err := env.Tokens.SignAccessToken(user.ID, user.Role)
	require.NoError(env.T, err)
	return &http.Cookie{Name: auth.AccessCookie, Value: token, Path: "/"}
}
