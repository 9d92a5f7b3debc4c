// sync.go — модели синхронизации реестра с каталогами-источниками.
package model

import "time"

// UpstreamDataset — дескриптор опубликованного датасета из каталога датасетов.
type UpstreamDataset struct {
	// DatasetID — стабильный идентификатор датасета
	DatasetID string
	// DisplayID — человекочитаемый идентификатор
	DisplayID string
	// DatasetType — категория датасета
	DatasetType string
	// DOIURL — ссылка DOI (опционально)
	DOIURL *string
	// GroupName — организация-владелец
	GroupName string
	// RestrictedStudyURL — ссылка на закрытое исследование (опционально);
	// её наличие делает датасет защищённым
	RestrictedStudyURL *string
	// PublishedAt — время публикации
	PublishedAt time.Time
}

// UpstreamFile — дескриптор файла из файлового каталога.
type UpstreamFile struct {
	// FileID — уникальный идентификатор файла
	FileID string
	// DatasetID — идентификатор датасета, которому принадлежит файл
	DatasetID string
	// Path — внутренний путь хранения
	Path string
	// Checksum — контрольная сумма
	Checksum string
	// Size — размер в байтах
	Size int64
}

// SyncPlan — результат сравнения каталогов с локальным реестром.
// Четыре множества; пары add/delete дизъюнктны по построению
// (теоретико-множественная разность).
type SyncPlan struct {
	// DatasetsToAdd — датасеты каталога, отсутствующие в реестре
	DatasetsToAdd []UpstreamDataset
	// DatasetsToDelete — идентификаторы датасетов реестра, отсутствующие в каталоге
	DatasetsToDelete []string
	// FilesToAdd — файлы каталога, отсутствующие в реестре
	FilesToAdd []UpstreamFile
	// FilesToDelete — идентификаторы файлов реестра, отсутствующие в каталоге
	FilesToDelete []string
}

// Empty сообщает, что план не содержит изменений.
func (p *SyncPlan) Empty() bool {
	return len(p.DatasetsToAdd) == 0 && len(p.DatasetsToDelete) == 0 &&
		len(p.FilesToAdd) == 0 && len(p.FilesToDelete) == 0
}

// FetchError — ошибка получения списка файлов одного датасета.
// Не фатальна для прогона: датасет пропускается, остальные обрабатываются.
type FetchError struct {
	// DatasetID — датасет, для которого не удалось получить файлы
	DatasetID string
	// Message — текст ошибки
	Message string
}

// SyncResult — итог одного прогона синхронизации.
type SyncResult struct {
	// RunID — идентификатор прогона (для логов и отчётов)
	RunID string
	// DryRun — true, если изменения не применялись (только отчёты)
	DryRun bool
	// DatasetsAdded, DatasetsDeleted, FilesAdded, FilesDeleted — размеры применённого плана
	DatasetsAdded   int
	DatasetsDeleted int
	FilesAdded      int
	FilesDeleted    int
	// FetchErrors — ошибки получения файлов по датасетам (датасеты пропущены)
	FetchErrors []FetchError
	// StartedAt, CompletedAt — границы прогона
	StartedAt   time.Time
	CompletedAt time.Time
}
