package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	"github.com/davicafu/toplaces/internal/shared/infra/platform/kvstore"
)

// RankingQuery describe qué ranking se pide a la fuente remota y bajo qué
// claves se persiste en el almacén local.
type RankingQuery struct {
	Collection string
	OrderBy    string
	PayloadKey string
	ExpiryKey  string
}

// DefaultPlacesQuery es la consulta del ranking "top places".
func DefaultPlacesQuery() RankingQuery {
	return RankingQuery{
		Collection: placeDomain.DefaultCollection,
		OrderBy:    placeDomain.DefaultRankingField,
		PayloadKey: placeDomain.TopPlacesPayloadKey,
		ExpiryKey:  placeDomain.TopPlacesExpiryKey,
	}
}

// EntryState es la posición de la entrada persistida en su ciclo de vida.
type EntryState string

const (
	// EntryAbsent: falta el payload o la expiración, o alguno no se puede decodificar.
	EntryAbsent EntryState = "absent"
	// EntryFresh: now < expiresAt. Se sirve sin consultar la fuente remota.
	EntryFresh EntryState = "fresh"
	// EntryStale: now >= expiresAt. Solo se sirve si la fuente remota falla.
	EntryStale EntryState = "stale"
)

// Tiempos máximos de las operaciones que no dependen del contexto del llamante.
const (
	// localStoreTimeout acota las lecturas y escrituras locales que siguen a la
	// consulta remota, cuando el contexto del llamante puede haber expirado ya.
	localStoreTimeout = 2 * time.Second
	// sharedFetchTimeout acota la consulta compartida con single-flight.
	sharedFetchTimeout = 10 * time.Second
)

// EntryInfo resume la entrada persistida sin tocar la fuente remota.
type EntryInfo struct {
	State     EntryState
	ExpiresAt time.Time
	Items     int
}

// Option configura un RankedListCache en su construcción.
type Option func(*options)

type options struct {
	now          func() time.Time
	singleFlight bool
}

// WithClock sustituye el reloj (útil en tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSingleFlight agrupa las peticiones concurrentes que fallan en caché en
// una única consulta remota.
func WithSingleFlight() Option {
	return func(o *options) { o.singleFlight = true }
}

// RankedListCache sirve un ranking top-N con TTL sobre un almacén local y cae
// al último valor conocido si la fuente remota falla. Nunca devuelve error.
type RankedListCache[T any] struct {
	source    placeDomain.RankedSource[T]
	store     kvstore.Store
	query     RankingQuery
	log       *zap.Logger
	now       func() time.Time
	sf        *singleflight.Group
	onRefresh func(ctx context.Context, items []T)
}

// NewRankedListCache es el constructor del caché de rankings.
func NewRankedListCache[T any](
	source placeDomain.RankedSource[T],
	store kvstore.Store,
	query RankingQuery,
	log *zap.Logger,
	opts ...Option,
) *RankedListCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &RankedListCache[T]{
		source: source,
		store:  store,
		query:  query,
		log:    log,
		now:    o.now,
	}
	if o.singleFlight {
		c.sf = &singleflight.Group{}
	}
	return c
}

// OnRefresh registra una función que se invoca tras cada consulta remota con
// resultados, después de persistirlos.
func (c *RankedListCache[T]) OnRefresh(fn func(ctx context.Context, items []T)) {
	c.onRefresh = fn
}

// GetTopItems devuelve hasta 'limit' registros del ranking.
// Con ttl 0 siempre se consulta la fuente remota.
func (c *RankedListCache[T]) GetTopItems(ctx context.Context, limit int, ttl time.Duration) []T {
	if limit <= 0 {
		c.log.Warn("Invalid ranking limit, returning empty list",
			zap.Int("limit", limit),
			zap.Error(placeDomain.ErrInvalidLimit))
		return []T{}
	}
	if ttl < 0 {
		ttl = 0
	}

	// 1. Camino rápido: entrada fresca en el almacén local, sin red.
	if items, expiresAt, ok := c.readEntry(ctx); ok && c.now().Before(expiresAt) {
		c.log.Debug("Ranked cache hit",
			zap.String("collection", c.query.Collection),
			zap.Int("items", len(items)),
			zap.Time("expires_at", expiresAt))
		return items
	}

	// 2. Miss o expirada: una única consulta remota.
	items, err := c.refresh(ctx, limit, ttl)
	if err != nil {
		// 3. Fallo remoto: servimos lo último persistido, aunque esté caducado.
		return c.fallback(ctx, err)
	}
	return items
}

// ClearCache elimina el payload y su marca de expiración. Los errores se
// registran y no se propagan.
func (c *RankedListCache[T]) ClearCache(ctx context.Context) {
	if failed := kvstore.RemoveKeys(ctx, c.store, c.log, c.query.PayloadKey, c.query.ExpiryKey); failed > 0 {
		c.log.Warn("Ranked cache only partially cleared", zap.Int("failed_keys", failed))
		return
	}
	c.log.Info("Ranked cache cleared", zap.String("collection", c.query.Collection))
}

// Inspect informa del estado de la entrada persistida.
func (c *RankedListCache[T]) Inspect(ctx context.Context) EntryInfo {
	items, expiresAt, ok := c.readEntry(ctx)
	if !ok {
		return EntryInfo{State: EntryAbsent}
	}
	info := EntryInfo{State: EntryStale, ExpiresAt: expiresAt, Items: len(items)}
	if c.now().Before(expiresAt) {
		info.State = EntryFresh
	}
	return info
}

func (c *RankedListCache[T]) refresh(ctx context.Context, limit int, ttl time.Duration) ([]T, error) {
	if c.sf == nil {
		return c.fetchAndStore(ctx, limit, ttl)
	}

	// La consulta compartida no hereda la cancelación de quien la lanza: otro
	// llamante puede estar esperando el mismo resultado. Cada llamante deja de
	// esperar cuando vence su propio contexto.
	key := fmt.Sprintf("%s:%s:%d:%d", c.query.Collection, c.query.OrderBy, limit, ttl)
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return c.fetchAndStore(sharedCtx, limit, ttl)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("Ranked fetch shared with concurrent callers", zap.String("key", key))
		}
		return res.Val.([]T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *RankedListCache[T]) fetchAndStore(ctx context.Context, limit int, ttl time.Duration) ([]T, error) {
	items, err := c.source.TopN(ctx, c.query.Collection, c.query.OrderBy, limit)
	if err != nil {
		return nil, err
	}

	// Un resultado vacío es una respuesta válida: no se toca la entrada existente.
	if len(items) == 0 {
		c.log.Info("Remote ranking returned no records, keeping stored entry",
			zap.String("collection", c.query.Collection))
		return []T{}, nil
	}
	if len(items) < limit {
		c.log.Debug("Remote ranking returned fewer records than requested",
			zap.Int("limit", limit),
			zap.Int("received", len(items)))
	}

	// Lo ya descargado se persiste aunque el contexto venza justo ahora.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), localStoreTimeout)
	c.writeEntry(writeCtx, items, c.now().Add(ttl))
	cancel()

	if c.onRefresh != nil {
		c.onRefresh(ctx, items)
	}
	return items, nil
}

func (c *RankedListCache[T]) fallback(ctx context.Context, cause error) []T {
	// El fallo remoto suele deberse a que el contexto del llamante ha vencido;
	// la lectura local usa un contexto propio para poder servir lo persistido.
	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), localStoreTimeout)
	defer cancel()

	items, ok := c.readPayload(readCtx)
	if !ok {
		c.log.Warn("Remote ranking fetch failed and no stored entry, returning empty list",
			zap.String("collection", c.query.Collection),
			zap.Error(cause))
		return []T{}
	}

	c.log.Warn("Remote ranking fetch failed, serving last stored entry",
		zap.String("collection", c.query.Collection),
		zap.Int("items", len(items)),
		zap.Error(cause))
	return items
}

// ---------- Lectura / escritura del almacén local ----------

func (c *RankedListCache[T]) readEntry(ctx context.Context) ([]T, time.Time, bool) {
	items, ok := c.readPayload(ctx)
	if !ok {
		return nil, time.Time{}, false
	}
	expiresAt, ok := c.readExpiry(ctx)
	if !ok {
		return nil, time.Time{}, false
	}
	return items, expiresAt, true
}

func (c *RankedListCache[T]) readPayload(ctx context.Context) ([]T, bool) {
	raw, found, err := c.store.Get(ctx, c.query.PayloadKey)
	if err != nil {
		c.log.Warn("Store read failed, treating cache as absent",
			zap.String("key", c.query.PayloadKey),
			zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn("Stored ranking payload is not decodable, ignoring it",
			zap.String("key", c.query.PayloadKey),
			zap.Error(err))
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

func (c *RankedListCache[T]) readExpiry(ctx context.Context) (time.Time, bool) {
	raw, found, err := c.store.Get(ctx, c.query.ExpiryKey)
	if err != nil {
		c.log.Warn("Store read failed, treating cache as absent",
			zap.String("key", c.query.ExpiryKey),
			zap.Error(err))
		return time.Time{}, false
	}
	if !found {
		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.log.Warn("Stored expiry is not an epoch timestamp, ignoring it",
			zap.String("key", c.query.ExpiryKey),
			zap.String("value", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (c *RankedListCache[T]) writeEntry(ctx context.Context, items []T, expiresAt time.Time) {
	data, err := json.Marshal(items)
	if err != nil {
		c.log.Warn("Failed to encode ranking payload, not persisting it", zap.Error(err))
		return
	}

	// El payload va primero: si falla no escribimos una expiración nueva que
	// haría pasar por fresca la entrada anterior.
	if err := c.store.Set(ctx, c.query.PayloadKey, string(data)); err != nil {
		c.log.Warn("Store write failed, ranking not persisted",
			zap.String("key", c.query.PayloadKey),
			zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, c.query.ExpiryKey, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
		c.log.Warn("Store write failed, ranking expiry not persisted",
			zap.String("key", c.query.ExpiryKey),
			zap.Error(err))
		return
	}

	c.log.Debug("Ranked cache refreshed",
		zap.String("collection", c.query.Collection),
		zap.Int("items", len(items)),
		zap.Time("expires_at", expiresAt))
}
