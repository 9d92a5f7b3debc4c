// Пакет model — доменные модели реестра DRS.
// BundleRecord — маппинг таблицы manifest (датасеты),
// FileRecord — маппинг таблицы files (отдельные файлы).
package model

import "time"

// BundleRecord — запись датасета в таблице manifest.
// Поля FileCount и PrettySize — денормализованный кэш, пересчитываемый
// Mutation Applier'ом после каждого изменения состава файлов.
// Источник истины — всегда дочерние FileRecord.
type BundleRecord struct {
	// DatasetID — стабильный уникальный идентификатор датасета
	DatasetID string
	// DisplayID — человекочитаемый вторичный идентификатор (присваивается консорциумом)
	DisplayID string
	// PrettySize — человекочитаемый размер ("2.3G"), производное поле
	PrettySize string
	// CreatedAt — время публикации датасета
	CreatedAt time.Time
	// DatasetType — категория датасета (свободный текст)
	DatasetType string
	// DOIURL — ссылка DOI (опционально)
	DOIURL *string
	// GroupName — организация-владелец
	GroupName string
	// IsProtected — выводится из наличия ссылки на закрытое исследование
	IsProtected bool
	// FileCount — количество дочерних файлов, производное поле
	FileCount int
}

// FileRecord — запись файла в таблице files.
// Size — авторитетный размер в байтах; размер бандла из PrettySize
// восстанавливается только с точностью до одного знака после запятой.
type FileRecord struct {
	// FileID — уникальный идентификатор файла
	FileID string
	// DatasetID — идентификатор родительского датасета
	DatasetID string
	// StoragePath — внутренний путь хранения (сегменты через "/")
	StoragePath string
	// Checksum — контрольная сумма содержимого
	Checksum string
	// Size — размер файла в байтах
	Size int64
	// DatasetCreatedAt — время публикации родительского датасета
	// (заполняется JOIN'ом при чтении; nil при нарушении целостности)
	DatasetCreatedAt *time.Time
}
