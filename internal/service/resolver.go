// resolver.go — сервис разрешения DRS-идентификаторов.
// Каскад поиска: сначала реестр датасетов (бандлы), затем файловый
// реестр. Дубликаты идентификаторов на любом уровне — нарушение
// целостности, разрешение прерывается.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/repository"
	"github.com/datarepo/drs-registry/internal/sizefmt"
)

// Prometheus-метрики разрешения.
var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drs_resolutions_total",
		Help: "Общее количество разрешений идентификаторов (по исходу).",
	}, []string{"outcome"})
)

// ResolverService разрешает DRS-идентификаторы в объекты протокола.
type ResolverService struct {
	bundles      repository.BundleRepository
	files        repository.FileRepository
	cache        *CacheService
	accessURL    *AccessURLBuilder
	domain       string
	checksumType string
	logger       *slog.Logger
}

// NewResolverService создаёт сервис разрешения.
// domain — домен в self_uri (drs://domain/id).
// checksumType — алгоритм контрольных сумм файлового реестра.
func NewResolverService(
	bundles repository.BundleRepository,
	files repository.FileRepository,
	cache *CacheService,
	accessURL *AccessURLBuilder,
	domain string,
	checksumType string,
	logger *slog.Logger,
) *ResolverService {
	return &ResolverService{
		bundles:      bundles,
		files:        files,
		cache:        cache,
		accessURL:    accessURL,
		domain:       domain,
		checksumType: checksumType,
		logger:       logger.With(slog.String("component", "resolver")),
	}
}

// Resolve разрешает идентификатор в DRS-объект.
//
// Каскад:
//  1. Реестр датасетов: одна запись — бандл, несколько — ErrIntegrityViolation.
//  2. Файловый реестр: одна запись — объект, несколько — ErrIntegrityViolation.
//  3. Нигде не найден — ErrNotFound.
func (s *ResolverService) Resolve(ctx context.Context, objectID string) (*model.DRSObject, error) {
	bundles, err := s.bundles.GetByDatasetID(ctx, objectID)
	if err != nil {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("поиск датасета %s: %w", objectID, err)
	}
	switch {
	case len(bundles) == 1:
		obj, err := s.bundleObject(ctx, bundles[0])
		if err != nil {
			resolutionsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		resolutionsTotal.WithLabelValues("bundle").Inc()
		return obj, nil
	case len(bundles) > 1:
		s.logger.Warn("Дубликаты идентификатора в реестре датасетов",
			slog.String("object_id", objectID),
			slog.Int("count", len(bundles)),
		)
		resolutionsTotal.WithLabelValues("integrity_violation").Inc()
		return nil, fmt.Errorf("%w: датасет %s (%d записей)", ErrIntegrityViolation, objectID, len(bundles))
	}

	files, err := s.getFileRecords(ctx, objectID)
	if err != nil {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	switch {
	case len(files) == 0:
		resolutionsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectID)
	case len(files) > 1:
		s.logger.Warn("Дубликаты идентификатора в файловом реестре",
			slog.String("object_id", objectID),
			slog.Int("count", len(files)),
		)
		resolutionsTotal.WithLabelValues("integrity_violation").Inc()
		return nil, fmt.Errorf("%w: файл %s (%d записей)", ErrIntegrityViolation, objectID, len(files))
	}

	obj, err := s.fileObject(ctx, files[0])
	if err != nil {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	resolutionsTotal.WithLabelValues("object").Inc()
	return obj, nil
}

// ResolveAccessURL возвращает URL доступа к файлу по методу доступа.
// Бандлы URL доступа не имеют: идентификатор датасета даёт ErrNotFound.
func (s *ResolverService) ResolveAccessURL(ctx context.Context, objectID, method string) (string, error) {
	if !s.accessURL.Supported(method) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAccessMethod, method)
	}

	files, err := s.getFileRecords(ctx, objectID)
	if err != nil {
		return "", err
	}
	switch {
	case len(files) == 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, objectID)
	case len(files) > 1:
		return "", fmt.Errorf("%w: файл %s (%d записей)", ErrIntegrityViolation, objectID, len(files))
	}

	url, err := s.accessURL.Build(method, files[0].StoragePath)
	if err != nil {
		return "", err
	}
	if url == "" {
		// Путь хранилища не адресуем снаружи
		s.logger.Warn("Путь файла непригоден для построения URL доступа",
			slog.String("object_id", objectID),
			slog.String("storage_path", files[0].StoragePath),
		)
		return "", fmt.Errorf("%w: %s", ErrNotFound, objectID)
	}
	return url, nil
}

// ListDatasetIDs возвращает отсортированный список идентификаторов
// датасетов реестра.
func (s *ResolverService) ListDatasetIDs(ctx context.Context) ([]string, error) {
	ids, err := s.bundles.ListDatasetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("список датасетов: %w", err)
	}
	return ids, nil
}

// bundleObject строит DRS-представление бандла (датасета).
func (s *ResolverService) bundleObject(ctx context.Context, b *model.BundleRecord) (*model.DRSObject, error) {
	size, err := sizefmt.Parse(b.PrettySize)
	if err != nil {
		// Повреждённый агрегат не должен ломать разрешение
		s.logger.Warn("Не удалось разобрать агрегированный размер датасета",
			slog.String("dataset_id", b.DatasetID),
			slog.String("pretty_size", b.PrettySize),
			slog.String("error", err.Error()),
		)
		size = 0
	}

	files, err := s.files.ListByDataset(ctx, b.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("содержимое датасета %s: %w", b.DatasetID, err)
	}

	contents := make([]model.ContentsEntry, 0, len(files))
	for _, f := range files {
		contents = append(contents, model.ContentsEntry{
			Name:   path.Base(f.StoragePath),
			ID:     f.FileID,
			DRSURI: s.selfURI(f.FileID),
		})
	}

	return &model.DRSObject{
		ID:          b.DatasetID,
		SelfURI:     s.selfURI(b.DatasetID),
		Name:        b.DisplayID,
		Size:        size,
		CreatedTime: b.CreatedAt,
		// У бандла нет единой контрольной суммы — пустая заглушка
		Checksums:     []model.Checksum{{Checksum: "", Type: s.checksumType}},
		AccessMethods: []model.AccessMethod{},
		Contents:      contents,
		Description:   fmt.Sprintf("%s - %s dataset", b.DisplayID, b.DatasetType),
	}, nil
}

// fileObject строит DRS-представление одиночного файла.
func (s *ResolverService) fileObject(ctx context.Context, f *model.FileRecord) (*model.DRSObject, error) {
	name := path.Base(f.StoragePath)

	obj := &model.DRSObject{
		ID:      f.FileID,
		SelfURI: s.selfURI(f.FileID),
		Name:    name,
		Size:    f.Size,
		Checksums: []model.Checksum{
			{Checksum: f.Checksum, Type: s.checksumType},
		},
		AccessMethods: []model.AccessMethod{},
	}

	// Время публикации наследуется от родительского датасета
	if f.DatasetCreatedAt != nil {
		obj.CreatedTime = *f.DatasetCreatedAt
	}

	// Описание включает читаемый идентификатор датасета, когда
	// родитель однозначно определён
	display := f.DatasetID
	parents, err := s.bundles.GetByDatasetID(ctx, f.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("поиск датасета файла %s: %w", f.FileID, err)
	}
	if len(parents) == 1 {
		display = parents[0].DisplayID
	}
	obj.Description = fmt.Sprintf("%s - file %s", display, name)

	if url, err := s.accessURL.Build("https", f.StoragePath); err == nil && url != "" {
		obj.AccessMethods = append(obj.AccessMethods, model.AccessMethod{
			Type:      "https",
			AccessURL: model.AccessURL{URL: url},
			AccessID:  "https",
		})
	}

	return obj, nil
}

// getFileRecords возвращает записи файлового реестра по идентификатору
// из кэша или БД. Кэшируется любой результат, включая пустой.
func (s *ResolverService) getFileRecords(ctx context.Context, fileID string) ([]*model.FileRecord, error) {
	if records, ok := s.cache.Get(fileID); ok {
		return records, nil
	}

	records, err := s.files.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("поиск файла %s: %w", fileID, err)
	}

	s.cache.Set(fileID, records)
	return records, nil
}

// selfURI строит drs://-ссылку объекта.
func (s *ResolverService) selfURI(id string) string {
	return fmt.Sprintf("drs://%s/%s", s.domain, id)
}
