package repository

import (
	"context"
	"fmt"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// FileRepository — интерфейс доступа к файлам в таблице files.
type FileRepository interface {
	// GetByFileID возвращает все записи файла с указанным идентификатором,
	// дополненные временем публикации родительского датасета.
	// Более одной строки — нарушение целостности (распознаёт резолвер).
	GetByFileID(ctx context.Context, fileID string) ([]*model.FileRecord, error)
	// ListByDataset возвращает файлы датасета (для contents бандла).
	ListByDataset(ctx context.Context, datasetID string) ([]*model.FileRecord, error)
	// ListFileIDs возвращает идентификаторы всех файлов реестра.
	ListFileIDs(ctx context.Context) ([]string, error)
	// AggregateByDataset возвращает количество и суммарный размер файлов датасета.
	AggregateByDataset(ctx context.Context, datasetID string) (count int, totalSize int64, err error)
	// Insert создаёт запись файла.
	Insert(ctx context.Context, f *model.FileRecord) error
	// DeleteByFileID удаляет записи файла по идентификатору.
	DeleteByFileID(ctx context.Context, fileID string) error
	// DeleteByDataset удаляет все файлы датасета. Возвращает количество удалённых.
	DeleteByDataset(ctx context.Context, datasetID string) (int, error)
}

// fileRepo — реализация FileRepository через pgx.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// GetByFileID возвращает записи файла с JOIN'ом времени публикации датасета.
// LEFT JOIN: отсутствующий родитель даёт NULL (переходное состояние
// или дрейф целостности), резолвер обрабатывает это сам.
func (r *fileRepo) GetByFileID(ctx context.Context, fileID string) ([]*model.FileRecord, error) {
	query := `
		SELECT f.file_id, f.dataset_id, f.storage_path, f.checksum, f.size, m.creation_date
		FROM files f
		LEFT JOIN manifest m ON m.dataset_id = f.dataset_id
		WHERE f.file_id = $1`

	rows, err := r.db.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		f := &model.FileRecord{}
		if err := rows.Scan(
			&f.FileID, &f.DatasetID, &f.StoragePath, &f.Checksum, &f.Size, &f.DatasetCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// ListByDataset возвращает файлы датасета, отсортированные по пути хранения.
func (r *fileRepo) ListByDataset(ctx context.Context, datasetID string) ([]*model.FileRecord, error) {
	query := `
		SELECT file_id, dataset_id, storage_path, checksum, size
		FROM files
		WHERE dataset_id = $1
		ORDER BY storage_path`

	rows, err := r.db.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файлов датасета: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		f := &model.FileRecord{}
		if err := rows.Scan(&f.FileID, &f.DatasetID, &f.StoragePath, &f.Checksum, &f.Size); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// ListFileIDs возвращает отсортированный список идентификаторов файлов.
func (r *fileRepo) ListFileIDs(ctx context.Context) ([]string, error) {
	query := `SELECT file_id FROM files ORDER BY file_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
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

// AggregateByDataset возвращает количество и суммарный размер файлов датасета.
func (r *fileRepo) AggregateByDataset(ctx context.Context, datasetID string) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(size), 0) FROM files WHERE dataset_id = $1`

	var count int
	var total int64
	if err := r.db.QueryRow(ctx, query, datasetID).Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("ошибка агрегации файлов датасета %s: %w", datasetID, err)
	}
	return count, total, nil
}

// Insert создаёт запись файла.
func (r *fileRepo) Insert(ctx context.Context, f *model.FileRecord) error {
	query := `
		INSERT INTO files (file_id, dataset_id, storage_path, checksum, size)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, f.FileID, f.DatasetID, f.StoragePath, f.Checksum, f.Size)
	if err != nil {
		return fmt.Errorf("ошибка вставки файла %s: %w", f.FileID, err)
	}
	return nil
}

// DeleteByFileID удаляет записи файла по идентификатору.
func (r *fileRepo) DeleteByFileID(ctx context.Context, fileID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM files WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("ошибка удаления файла %s: %w", fileID, err)
	}
	return nil
}

// DeleteByDataset удаляет все файлы датасета.
func (r *fileRepo) DeleteByDataset(ctx context.Context, datasetID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления файлов датасета %s: %w", datasetID, err)
	}
	return int(tag.RowsAffected()), nil
}
