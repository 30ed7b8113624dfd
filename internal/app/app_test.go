package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio-backend/internal/config"
	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/sources"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/logger"
	"folio-backend/internal/pkg/testdb"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		LogLevel:       "error",
		Timezone:       "UTC",
		DailyCron:      "58 23 * * *",
		FetchWorkers:   2,
		ItemTimeout:    2 * time.Second,
		BatchTimeout:   5 * time.Second,
		HTTPTimeout:    time.Second,
		DefaultFXRate:  150,
		SessionCookie:  "folio.sid",
		HealthAdminKey: "admin",
	}
}

func newTestApp(t *testing.T) (*App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// Every source answers 404, so market prices are never updated.
	upstream := httptest.NewServer(http.NotFoundHandler())
	ep := sources.Endpoints{
		ChartURL:        upstream.URL + "/chart/",
		DomesticPageURL: upstream.URL + "/jp/",
		ForeignPageURL:  upstream.URL + "/us/",
		GoldURL:         upstream.URL + "/gold",
		CryptoURL:       upstream.URL + "/crypto",
		FundURL:         upstream.URL + "/fund",
		FXPageURL:       upstream.URL + "/fx",
	}

	a, err := New(testConfig(),
		WithDB(testdb.New(t)),
		WithRedis(rdb),
		WithEndpoints(ep),
		WithLogger(logger.Silent()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Close()
		upstream.Close()
		rdb.Close()
		mr.Close()
	})
	return a, rdb
}

func login(t *testing.T, rdb *redis.Client, userID uint) *http.Cookie {
	b, err := json.Marshal(middleware.SessionData{UserID: userID})
	require.NoError(t, err)
	require.NoError(t, rdb.Set(context.Background(), middleware.SessionKey("sid-test"), b, time.Hour).Err())
	return &http.Cookie{Name: "folio.sid", Value: "s:sid-test.sig"}
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, 10_000)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestApp_Health(t *testing.T) {
	a, _ := newTestApp(t)
	code, out := do(t, a.Fiber, "GET", "/health/json", nil, nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}

func TestApp_RequiresSession(t *testing.T) {
	a, _ := newTestApp(t)
	code, _ := do(t, a.Fiber, "GET", "/api/v1/holdings", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestApp_AddCashRecordsSnapshot(t *testing.T) {
	a, rdb := newTestApp(t)
	cookie := login(t, rdb, 1)

	code, _ := do(t, a.Fiber, "POST", "/api/v1/holdings", map[string]interface{}{
		"asset_class": "cash", "quantity": 250000,
	}, cookie)
	require.Equal(t, fiber.StatusCreated, code)

	code, out := do(t, a.Fiber, "GET", "/api/v1/portfolio/summary", nil, cookie)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 250000.0, out["data"].(map[string]interface{})["total_value"])

	code, out = do(t, a.Fiber, "GET", "/api/v1/portfolio/history", nil, cookie)
	require.Equal(t, fiber.StatusOK, code)
	history := out["data"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, 250000.0, history[0].(map[string]interface{})["total_value"])
}

func TestApp_RefreshWithUnreachableSources(t *testing.T) {
	a, rdb := newTestApp(t)
	cookie := login(t, rdb, 1)
	require.NoError(t, a.DB.Create(&domain.Holding{
		UserID: 1, AssetClass: domain.Gold, Symbol: "GOLD", Quantity: 10, LastPrice: 12000, AvgCost: 9000,
	}).Error)

	code, out := do(t, a.Fiber, "POST", "/api/v1/portfolio/refresh", nil, cookie)
	assert.Equal(t, fiber.StatusOK, code)
	meta := out["metadata"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["requested"])
	assert.Equal(t, float64(0), meta["updated"])
	assert.Contains(t, meta, "warning")

	var h domain.Holding
	require.NoError(t, a.DB.First(&h).Error)
	assert.Equal(t, 12000.0, h.LastPrice)
}

func TestApp_StartScheduler(t *testing.T) {
	a, _ := newTestApp(t)
	a.now = func() time.Time { return time.Date(2024, 5, 10, 0, 10, 0, 0, time.UTC) }
	require.NoError(t, a.StartScheduler())
	assert.Equal(t, 2, a.Scheduler.Entries())
}

func TestApp_DailyRunMissed(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	missed, err := a.dailyRunMissed(ctx, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, missed, "not due yet")

	missed, err = a.dailyRunMissed(ctx, time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, missed)

	snap := &domain.DailySnapshot{UserID: 1, RecordDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)}
	snap.SetCostBreakdown(domain.ClassValues{})
	require.NoError(t, a.snapshots.UpsertSnapshot(ctx, snap))

	missed, err = a.dailyRunMissed(ctx, time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, missed)
}

func TestApp_StartSchedulerCatchesUpMissedRun(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.DB.Create(&domain.User{ID: 1, Username: "a"}).Error)
	require.NoError(t, a.DB.Create(&domain.Holding{UserID: 1, AssetClass: domain.Cash, Symbol: "JPY", Quantity: 1000}).Error)

	today := domain.CalendarDate(time.Now(), time.UTC)
	a.now = func() time.Time { return today.Add(23*time.Hour + 59*time.Minute) }
	require.NoError(t, a.StartScheduler())

	assert.Eventually(t, func() bool {
		n, err := a.snapshots.CountSnapshotsOn(context.Background(), today)
		return err == nil && n == 1
	}, 5*time.Second, 50*time.Millisecond)
}
