// files.go — клиент файлового каталога: перечень файлов датасета.
//
// Каталог отвечает одним из трёх способов:
//   - 200 — JSON-массив файлов;
//   - 303 — тело ответа содержит URL, по которому нужно повторить запрос
//     (каталог выносит большие перечни на отдельный endpoint);
//   - 404 — у датасета нет файлов, это не ошибка.
//
// Редирект выполняется ровно один раз: повторный 303 — ошибка каталога.
package catalog

import (
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

// FileCatalogClient — клиент файлового каталога.
type FileCatalogClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// NewFileCatalogClient создаёт клиент файлового каталога.
// timeout — таймаут HTTP-запросов (DRS_FILE_CATALOG_TIMEOUT).
func NewFileCatalogClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *FileCatalogClient {
	return &FileCatalogClient{
		httpClient: &http.Client{
			Timeout: timeout,
			// 303 обрабатывается вручную: тело ответа содержит URL
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger.With(slog.String("component", "file_catalog")),
	}
}

// fileEntry — файл в ответе каталога.
// Путь приходит в поле filename либо path, filename приоритетен.
type fileEntry struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

// ListFiles возвращает перечень файлов датасета.
// Датасет без файлов (404 от каталога) — (nil, nil).
func (c *FileCatalogClient) ListFiles(ctx context.Context, datasetID string) ([]model.UpstreamFile, error) {
	reqURL := fmt.Sprintf("%s/%s/files", c.baseURL, datasetID)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	// 303 — тело содержит URL полного перечня, повторяем запрос один раз
	if resp.StatusCode == http.StatusSeeOther {
		redirectURL, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("чтение URL редиректа для датасета %s: %w", datasetID, readErr)
		}
		target := strings.TrimSpace(string(redirectURL))
		if target == "" {
			return nil, fmt.Errorf("каталог вернул 303 без URL для датасета %s", datasetID)
		}

		c.logger.Debug("Файловый каталог перенаправил запрос",
			slog.String("dataset_id", datasetID),
			slog.String("target", target),
		)

		resp, err = c.get(ctx, target)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// разбор ниже
	case http.StatusNotFound:
		// У датасета нет файлов
		return nil, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("файловый каталог вернул статус %d для датасета %s: %s",
			resp.StatusCode, datasetID, string(body))
	}

	var entries []fileEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("декодирование перечня файлов датасета %s: %w", datasetID, err)
	}

	files := make([]model.UpstreamFile, 0, len(entries))
	for _, e := range entries {
		path := e.Filename
		if path == "" {
			path = e.Path
		}
		files = append(files, model.UpstreamFile{
			FileID:    e.FileID,
			DatasetID: datasetID,
			Path:      path,
			Checksum:  e.Checksum,
			Size:      e.Size,
		})
	}

	return files, nil
}

// get выполняет GET-запрос с Bearer-токеном.
func (c *FileCatalogClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса к файловому каталогу: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос к файловому каталогу %s: %w", reqURL, err)
	}
	return resp, nil
}
