package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	infraEvents "github.com/davicafu/toplaces/internal/infra/events"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	placeEvents "github.com/davicafu/toplaces/internal/place/infra/inbound/events"
	sharedEvents "github.com/davicafu/toplaces/internal/shared/events"
	sharedBus "github.com/davicafu/toplaces/internal/shared/infra/platform/bus"
	"github.com/davicafu/toplaces/tests/mocks"
)

type mockTopPlacesCache struct {
	mock.Mock
}

func (m *mockTopPlacesCache) GetTopItems(ctx context.Context, limit int, ttl time.Duration) []placeDomain.Place {
	args := m.Called(limit, ttl)
	places, _ := args.Get(0).([]placeDomain.Place)
	return places
}

func (m *mockTopPlacesCache) ClearCache(ctx context.Context) {
	m.Called()
}

func setupRouter(cache TopPlacesCache) *gin.Engine {
	return setupRouterWithBus(cache, nil)
}

func setupRouterWithBus(cache TopPlacesCache, bus sharedBus.EventBus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPlaceRoutes(r, NewPlaceHandler(cache, bus, 5, time.Minute, zap.NewNop()))
	return r
}

func doRequest(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

type topResponse struct {
	Data []placeDomain.Place `json:"data"`
}

func TestGetTopPlaces_DefaultLimit(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("GetTopItems", 5, time.Minute).Return(mocks.SamplePlaces(5)).Once()

	w := doRequest(setupRouter(cache), http.MethodGet, "/places/top")

	require.Equal(t, http.StatusOK, w.Code)
	var body topResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 5)
	assert.Equal(t, "place-01", body.Data[0].ID)
	cache.AssertExpectations(t)
}

func TestGetTopPlaces_ExplicitLimit(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("GetTopItems", 2, time.Minute).Return(mocks.SamplePlaces(2)).Once()

	w := doRequest(setupRouter(cache), http.MethodGet, "/places/top?limit=2")

	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
}

func TestGetTopPlaces_EmptyListIsArray(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("GetTopItems", 5, time.Minute).Return([]placeDomain.Place{}).Once()

	w := doRequest(setupRouter(cache), http.MethodGet, "/places/top")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestGetTopPlaces_InvalidLimit(t *testing.T) {
	for _, raw := range []string{"0", "-3", "abc"} {
		t.Run(raw, func(t *testing.T) {
			cache := new(mockTopPlacesCache)

			w := doRequest(setupRouter(cache), http.MethodGet, "/places/top?limit="+raw)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), placeDomain.ErrInvalidLimit.Error())
			cache.AssertNotCalled(t, "GetTopItems", mock.Anything, mock.Anything)
		})
	}
}

func TestGetTopPlaces_CategoryFilter(t *testing.T) {
	cache := new(mockTopPlacesCache)
	// SamplePlaces alterna destination, hotel, restaurant, tour.
	cache.On("GetTopItems", 5, time.Minute).Return(mocks.SamplePlaces(5)).Once()

	w := doRequest(setupRouter(cache), http.MethodGet, "/places/top?category=destination")

	require.Equal(t, http.StatusOK, w.Code)
	var body topResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "place-01", body.Data[0].ID)
	assert.Equal(t, "place-05", body.Data[1].ID)
}

func TestGetTopPlaces_UnknownCategory(t *testing.T) {
	cache := new(mockTopPlacesCache)

	w := doRequest(setupRouter(cache), http.MethodGet, "/places/top?category=spaceport")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cache.AssertNotCalled(t, "GetTopItems", mock.Anything, mock.Anything)
}

func TestClearTopPlaces(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("ClearCache").Return().Once()

	w := doRequest(setupRouter(cache), http.MethodDelete, "/places/top/cache")

	assert.Equal(t, http.StatusNoContent, w.Code)
	cache.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	w := doRequest(setupRouter(new(mockTopPlacesCache)), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNewPlaceHandler_NonPositiveDefaultLimit(t *testing.T) {
	h := NewPlaceHandler(new(mockTopPlacesCache), nil, 0, time.Minute, zap.NewNop())

	assert.Equal(t, placeDomain.DefaultTopLimit, h.defaultLimit)
}

func TestNewRouter_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewPlaceHandler(new(mockTopPlacesCache), nil, 5, time.Minute, zap.NewNop()), zap.NewNop())

	w := doRequest(r, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"message":"route not found"}}`, w.Body.String())
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := new(mockTopPlacesCache)
	cache.On("GetTopItems", 5, time.Minute).Run(func(mock.Arguments) { panic("boom") })
	r := NewRouter(NewPlaceHandler(cache, nil, 5, time.Minute, zap.NewNop()), zap.NewNop())

	w := doRequest(r, http.MethodGet, "/places/top")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestClearTopPlaces_PublishesInvalidation(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("ClearCache").Return().Once()
	bus := new(mocks.MockPublisher)
	bus.On("Publish", mock.Anything, mock.MatchedBy(func(evt sharedEvents.IntegrationEvent) bool {
		return evt.Type == placeDomain.RankingInvalidated
	})).Return(nil).Once()

	w := doRequest(setupRouterWithBus(cache, bus), http.MethodDelete, "/places/top/cache")

	assert.Equal(t, http.StatusNoContent, w.Code)
	cache.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestClearTopPlaces_PublishFailureStillClears(t *testing.T) {
	cache := new(mockTopPlacesCache)
	cache.On("ClearCache").Return().Once()
	bus := new(mocks.MockPublisher)
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	w := doRequest(setupRouterWithBus(cache, bus), http.MethodDelete, "/places/top/cache")

	assert.Equal(t, http.StatusNoContent, w.Code)
	cache.AssertExpectations(t)
}

// countingCache cuenta los borrados para seguir el evento hasta el consumidor.
type countingCache struct {
	clears atomic.Int32
}

func (c *countingCache) GetTopItems(ctx context.Context, limit int, ttl time.Duration) []placeDomain.Place {
	return []placeDomain.Place{}
}

func (c *countingCache) ClearCache(ctx context.Context) {
	c.clears.Add(1)
}

func TestClearTopPlaces_InvalidationReachesInMemoryConsumer(t *testing.T) {
	cache := &countingCache{}
	bus := infraEvents.NewInMemoryEventBus(placeDomain.PlaceTopic, zap.NewNop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	placeEvents.BackgroundConsumerChan(ctx, bus.Subscribe(4), placeEvents.NewPlaceConsumer(cache, zap.NewNop()))

	w := doRequest(setupRouterWithBus(cache, bus), http.MethodDelete, "/places/top/cache")

	assert.Equal(t, http.StatusNoContent, w.Code)
	// Un borrado síncrono del handler y otro del consumidor al recibir el evento.
	assert.Eventually(t, func() bool { return cache.clears.Load() == 2 }, time.Second, 10*time.Millisecond)
}
