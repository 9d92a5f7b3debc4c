// Пакет service — бизнес-логика разрешения DRS-объектов.
// CacheService — LRU-кэш записей файлового реестра с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drs_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш записей файлов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drs_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша записей файлов.",
	})
)

// CacheService — LRU-кэш результатов выборки файлов по идентификатору
// с автоматическим TTL. Кэшируется весь срез строк: дубликаты
// идентификаторов тоже должны разрешаться из кэша одинаково.
type CacheService struct {
	cache *expirable.LRU[string, []*model.FileRecord]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, []*model.FileRecord](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает записи файлов из кэша по fileID.
// Возвращает (записи, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(fileID string) ([]*model.FileRecord, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(fileID string, records []*model.FileRecord) {
	c.cache.Add(fileID, records)
}

// Delete удаляет запись из кэша.
func (c *CacheService) Delete(fileID string) {
	c.cache.Remove(fileID)
}
