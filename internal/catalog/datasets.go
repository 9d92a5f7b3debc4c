// Пакет catalog — HTTP-клиенты внешних каталогов.
// datasets.go — клиент каталога датасетов: поисковый запрос возвращает
// перечень опубликованных датасетов с метаданными.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// datasetPageSize — размер запрашиваемой страницы каталога.
// Каталог не отдаёт больше записей за один запрос.
const datasetPageSize = 10000

// DatasetCatalogClient — клиент поискового каталога датасетов.
type DatasetCatalogClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// NewDatasetCatalogClient создаёт клиент каталога датасетов.
// baseURL — поисковый endpoint каталога.
// token — Bearer-токен; пустая строка — запросы без авторизации.
// timeout — таймаут HTTP-запросов (DRS_DATASET_CATALOG_TIMEOUT).
func NewDatasetCatalogClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *DatasetCatalogClient {
	return &DatasetCatalogClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger.With(slog.String("component", "dataset_catalog")),
	}
}

// searchEnvelope — конверт поискового ответа каталога.
type searchEnvelope struct {
	Hits struct {
		Hits []struct {
			ID     string        `json:"_id"`
			Source datasetSource `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// datasetSource — метаданные датасета в документе каталога.
type datasetSource struct {
	DisplayID          string  `json:"display_id"`
	DatasetType        string  `json:"dataset_type"`
	DOIURL             *string `json:"doi_url"`
	GroupName          string  `json:"group_name"`
	RestrictedStudyURL *string `json:"restricted_study_url"`
	// PublishedTimestamp — время публикации, миллисекунды Unix epoch.
	PublishedTimestamp int64 `json:"published_timestamp"`
}

// ListPublished возвращает все опубликованные датасеты каталога.
func (c *DatasetCatalogClient) ListPublished(ctx context.Context) ([]model.UpstreamDataset, error) {
	query := map[string]any{
		"size": datasetPageSize,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"status": "published"}},
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("сериализация поискового запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("создание запроса к каталогу датасетов: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос к каталогу датасетов %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("каталог датасетов вернул статус %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("декодирование ответа каталога датасетов: %w", err)
	}

	datasets := make([]model.UpstreamDataset, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		datasets = append(datasets, model.UpstreamDataset{
			DatasetID:          hit.ID,
			DisplayID:          hit.Source.DisplayID,
			DatasetType:        hit.Source.DatasetType,
			DOIURL:             hit.Source.DOIURL,
			GroupName:          hit.Source.GroupName,
			RestrictedStudyURL: hit.Source.RestrictedStudyURL,
			PublishedAt:        time.UnixMilli(hit.Source.PublishedTimestamp).UTC(),
		})
	}

	c.logger.Debug("Каталог датасетов опрошен",
		slog.Int("datasets", len(datasets)),
	)

	return datasets, nil
}
