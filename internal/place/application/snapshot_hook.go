package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	sharedUtils "github.com/davicafu/toplaces/internal/shared/infra/utils"
)

const snapshotTimeout = 2 * time.Second

// SnapshotHook devuelve un hook para OnRefresh que registra cada ranking
// recién descargado en el repositorio de analítica, en segundo plano.
func SnapshotHook(repo placeDomain.RankingAnalyticsRepository, log *zap.Logger, now func() time.Time) func(ctx context.Context, places []placeDomain.Place) {
	if now == nil {
		now = time.Now
	}
	return func(_ context.Context, places []placeDomain.Place) {
		// Copia: el slice también se devuelve al llamante.
		snapshot := append([]placeDomain.Place(nil), places...)
		fetchedAt := now().UTC()

		sharedUtils.RunAsync(log, "ranking_snapshot", snapshotTimeout, func(ctx context.Context) error {
			return repo.LogSnapshot(ctx, snapshot, fetchedAt)
		})
	}
}
