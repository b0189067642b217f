package mocks

import (
	"context"
	"time"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/stretchr/testify/mock"
)

// MockRankingAnalyticsRepo simula el repositorio de analítica de rankings.
type MockRankingAnalyticsRepo struct {
	mock.Mock
}

var _ placeDomain.RankingAnalyticsRepository = (*MockRankingAnalyticsRepo)(nil)

func (m *MockRankingAnalyticsRepo) LogSnapshot(ctx context.Context, places []placeDomain.Place, fetchedAt time.Time) error {
	args := m.Called(ctx, places, fetchedAt)
	return args.Error(0)
}

func (m *MockRankingAnalyticsRepo) PopularityTrend(ctx context.Context, placeID string, start, end time.Time) ([]placeDomain.DailyPopularity, error) {
	args := m.Called(ctx, placeID, start, end)
	trend, _ := args.Get(0).([]placeDomain.DailyPopularity)
	return trend, args.Error(1)
}
