// drs.go — представления объектов протокола разрешения идентификаторов (DRS).
// Структуры сериализуются в JSON как есть — имена полей соответствуют
// контракту GA4GH DRS.
package model

import "time"

// Checksum — контрольная сумма объекта.
type Checksum struct {
	Checksum string `json:"checksum"`
	Type     string `json:"type"`
}

// AccessURL — URL для получения содержимого объекта.
type AccessURL struct {
	URL string `json:"url"`
}

// AccessMethod — способ доступа к объекту.
type AccessMethod struct {
	Type      string    `json:"type"`
	AccessURL AccessURL `json:"access_url"`
	AccessID  string    `json:"access_id"`
}

// ContentsEntry — элемент содержимого бандла.
type ContentsEntry struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	DRSURI string `json:"drs_uri"`
}

// DRSObject — ответ на разрешение идентификатора: бандл или одиночный объект.
// Для бандла Contents заполнен, AccessMethods пуст и Checksums содержит
// пустую заглушку (у бандла нет единой контрольной суммы).
// Для объекта Contents отсутствует, Name и AccessMethods заполнены.
type DRSObject struct {
	ID            string          `json:"id"`
	SelfURI       string          `json:"self_uri"`
	Name          string          `json:"name,omitempty"`
	Size          int64           `json:"size"`
	CreatedTime   time.Time       `json:"created_time"`
	Checksums     []Checksum      `json:"checksums"`
	AccessMethods []AccessMethod  `json:"access_methods"`
	Contents      []ContentsEntry `json:"contents,omitempty"`
	Description   string          `json:"description,omitempty"`
}
