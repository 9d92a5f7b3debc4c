package repository

import (
	"context"
	"fmt"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/sizefmt"
)

// bundleColumns — список столбцов таблицы manifest для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const bundleColumns = `dataset_id, display_id, pretty_size, creation_date,
	dataset_type, doi_url, group_name, is_protected, file_count`

// BundleRepository — интерфейс доступа к датасетам в таблице manifest.
type BundleRepository interface {
	// GetByDatasetID возвращает все записи с указанным идентификатором.
	// Идентификаторы обязаны быть уникальными; более одной строки —
	// нарушение целостности, которое распознаёт резолвер.
	GetByDatasetID(ctx context.Context, datasetID string) ([]*model.BundleRecord, error)
	// ListDatasetIDs возвращает идентификаторы всех зарегистрированных датасетов.
	ListDatasetIDs(ctx context.Context) ([]string, error)
	// Insert создаёт запись датасета.
	Insert(ctx context.Context, b *model.BundleRecord) error
	// Delete удаляет записи датасета по идентификатору.
	Delete(ctx context.Context, datasetID string) error
	// RecomputeAggregates пересчитывает pretty_size и file_count каждого
	// датасета из его текущих файлов. Возвращает количество обновлённых записей.
	RecomputeAggregates(ctx context.Context) (int, error)
}

// bundleRepo — реализация BundleRepository через pgx.
type bundleRepo struct {
	db DBTX
}

// NewBundleRepository создаёт репозиторий датасетов.
func NewBundleRepository(db DBTX) BundleRepository {
	return &bundleRepo{db: db}
}

// GetByDatasetID возвращает все записи manifest с указанным идентификатором.
// Пустой срез — записей нет (не ошибка: каскад резолвера продолжается).
func (r *bundleRepo) GetByDatasetID(ctx context.Context, datasetID string) ([]*model.BundleRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM manifest WHERE dataset_id = $1`, bundleColumns)

	rows, err := r.db.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения датасета: %w", err)
	}
	defer rows.Close()

	var result []*model.BundleRecord
	for rows.Next() {
		b := &model.BundleRecord{}
		if err := rows.Scan(
			&b.DatasetID, &b.DisplayID, &b.PrettySize, &b.CreatedAt,
			&b.DatasetType, &b.DOIURL, &b.GroupName, &b.IsProtected, &b.FileCount,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования датасета: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// ListDatasetIDs возвращает отсортированный список уникальных идентификаторов.
func (r *bundleRepo) ListDatasetIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT dataset_id FROM manifest ORDER BY dataset_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка датасетов: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования идентификатора: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return ids, nil
}

// Insert создаёт запись датасета в manifest.
func (r *bundleRepo) Insert(ctx context.Context, b *model.BundleRecord) error {
	query := `
		INSERT INTO manifest (dataset_id, display_id, pretty_size, creation_date,
			dataset_type, doi_url, group_name, is_protected, file_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		b.DatasetID, b.DisplayID, b.PrettySize, b.CreatedAt,
		b.DatasetType, b.DOIURL, b.GroupName, b.IsProtected, b.FileCount,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки датасета %s: %w", b.DatasetID, err)
	}
	return nil
}

// Delete удаляет записи датасета. Файлы датасета должны быть удалены
// раньше — порядок обеспечивает Mutation Applier.
func (r *bundleRepo) Delete(ctx context.Context, datasetID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM manifest WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("ошибка удаления датасета %s: %w", datasetID, err)
	}
	return nil
}

// RecomputeAggregates пересчитывает денормализованные поля каждого датасета
// из текущего состава файлов. Датасеты без файлов получают 0 файлов и "0B".
// Вызывается последним шагом транзакции применения — чинит дрейф,
// оставшийся от ранних неполных прогонов.
func (r *bundleRepo) RecomputeAggregates(ctx context.Context) (int, error) {
	query := `
		SELECT m.dataset_id, COUNT(f.file_id), COALESCE(SUM(f.size), 0)
		FROM manifest m
		LEFT JOIN files f ON f.dataset_id = m.dataset_id
		GROUP BY m.dataset_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("ошибка агрегации файлов: %w", err)
	}

	type aggregate struct {
		datasetID string
		count     int
		total     int64
	}
	var aggregates []aggregate
	for rows.Next() {
		var a aggregate
		if err := rows.Scan(&a.datasetID, &a.count, &a.total); err != nil {
			rows.Close()
			return 0, fmt.Errorf("ошибка сканирования агрегата: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	rows.Close()

	updateQuery := `
		UPDATE manifest
		SET pretty_size = $2, file_count = $3
		WHERE dataset_id = $1`

	updated := 0
	for _, a := range aggregates {
		tag, err := r.db.Exec(ctx, updateQuery, a.datasetID, sizefmt.Format(a.total), a.count)
		if err != nil {
			return updated, fmt.Errorf("ошибка обновления агрегатов датасета %s: %w", a.datasetID, err)
		}
		updated += int(tag.RowsAffected())
	}
	return updated, nil
}
