package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/service"
)

// mockResolver — мок ObjectResolver с подменяемыми функциями.
type mockResolver struct {
	resolve          func(ctx context.Context, objectID string) (*model.DRSObject, error)
	resolveAccessURL func(ctx context.Context, objectID, method string) (string, error)
	listDatasetIDs   func(ctx context.Context) ([]string, error)
}

func (m *mockResolver) Resolve(ctx context.Context, objectID string) (*model.DRSObject, error) {
	return m.resolve(ctx, objectID)
}

func (m *mockResolver) ResolveAccessURL(ctx context.Context, objectID, method string) (string, error) {
	return m.resolveAccessURL(ctx, objectID, method)
}

func (m *mockResolver) ListDatasetIDs(ctx context.Context) ([]string, error) {
	return m.listDatasetIDs(ctx)
}

// testRouter собирает chi-роутер с DRS-маршрутами поверх мока.
func testRouter(resolver *mockResolver) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewAPIHandler(resolver, NewHealthHandler(nil), logger)

	r := chi.NewRouter()
	r.Get("/ga4gh/drs/v1/objects/{object_id}", h.GetObject)
	r.Get("/ga4gh/drs/v1/objects/{object_id}/access/{access_method}", h.GetObjectAccess)
	r.Get("/datasets", h.ListDatasets)
	return r
}

func doRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// errorCode извлекает машиночитаемый код из тела ответа ошибки.
func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("не удалось разобрать тело ошибки %q: %v", body, err)
	}
	return resp.Error.Code
}

// TestGetObjectOK проверяет успешное разрешение идентификатора.
func TestGetObjectOK(t *testing.T) {
	resolver := &mockResolver{
		resolve: func(ctx context.Context, objectID string) (*model.DRSObject, error) {
			return &model.DRSObject{
				ID:      objectID,
				SelfURI: "drs://drs.example.org/" + objectID,
				Name:    "reads.fastq.gz",
				Size:    4096,
			}, nil
		},
	}

	rec := doRequest(t, testRouter(resolver), "/ga4gh/drs/v1/objects/f-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var obj model.DRSObject
	if err := json.Unmarshal(rec.Body.Bytes(), &obj); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if obj.ID != "f-1" || obj.SelfURI != "drs://drs.example.org/f-1" {
		t.Errorf("ответ = %+v", obj)
	}
}

// TestGetObjectNotFound: отсутствующий идентификатор — 404 NOT_FOUND.
func TestGetObjectNotFound(t *testing.T) {
	resolver := &mockResolver{
		resolve: func(ctx context.Context, objectID string) (*model.DRSObject, error) {
			return nil, fmt.Errorf("%w: %s", service.ErrNotFound, objectID)
		},
	}

	rec := doRequest(t, testRouter(resolver), "/ga4gh/drs/v1/objects/missing")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидался 404", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != "NOT_FOUND" {
		t.Errorf("код = %q, ожидался NOT_FOUND", code)
	}
}

// TestGetObjectIntegrityViolation: дубликаты — 409 INTEGRITY_VIOLATION.
func TestGetObjectIntegrityViolation(t *testing.T) {
	resolver := &mockResolver{
		resolve: func(ctx context.Context, objectID string) (*model.DRSObject, error) {
			return nil, fmt.Errorf("%w: %s", service.ErrIntegrityViolation, objectID)
		},
	}

	rec := doRequest(t, testRouter(resolver), "/ga4gh/drs/v1/objects/dup")

	if rec.Code != http.StatusConflict {
		t.Fatalf("статус = %d, ожидался 409", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != "INTEGRITY_VIOLATION" {
		t.Errorf("код = %q, ожидался INTEGRITY_VIOLATION", code)
	}
}

// TestGetObjectInternalError: прочие ошибки — 500 без деталей.
func TestGetObjectInternalError(t *testing.T) {
	resolver := &mockResolver{
		resolve: func(ctx context.Context, objectID string) (*model.DRSObject, error) {
			return nil, fmt.Errorf("отказ базы данных")
		},
	}

	rec := doRequest(t, testRouter(resolver), "/ga4gh/drs/v1/objects/f-1")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус = %d, ожидался 500", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != "INTERNAL_ERROR" {
		t.Errorf("код = %q, ожидался INTERNAL_ERROR", code)
	}
}

// TestGetObjectAccess проверяет выдачу URL доступа.
func TestGetObjectAccess(t *testing.T) {
	resolver := &mockResolver{
		resolveAccessURL: func(ctx context.Context, objectID, method string) (string, error) {
			if method != "https" {
				return "", fmt.Errorf("%w: %s", service.ErrUnsupportedAccessMethod, method)
			}
			return "https://files.example.org/dir/data.bin", nil
		},
	}
	router := testRouter(resolver)

	rec := doRequest(t, router, "/ga4gh/drs/v1/objects/f-1/access/https")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if resp["url"] != "https://files.example.org/dir/data.bin" {
		t.Errorf("url = %q", resp["url"])
	}

	// Неподдерживаемый метод — 400 UNSUPPORTED_ACCESS_METHOD
	rec = doRequest(t, router, "/ga4gh/drs/v1/objects/f-1/access/ftp")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидался 400", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != "UNSUPPORTED_ACCESS_METHOD" {
		t.Errorf("код = %q, ожидался UNSUPPORTED_ACCESS_METHOD", code)
	}
}

// TestListDatasets проверяет endpoint перечня датасетов.
func TestListDatasets(t *testing.T) {
	resolver := &mockResolver{
		listDatasetIDs: func(ctx context.Context) ([]string, error) {
			return []string{"ds-1", "ds-2"}, nil
		},
	}

	rec := doRequest(t, testRouter(resolver), "/datasets")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	var ids []string
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if len(ids) != 2 || ids[0] != "ds-1" {
		t.Errorf("ids = %v", ids)
	}
}

// TestListDatasetsEmpty: пустой реестр — пустой массив, не null.
func TestListDatasetsEmpty(t *testing.T) {
	resolver := &mockResolver{
		listDatasetIDs: func(ctx context.Context) ([]string, error) {
			return nil, nil
		},
	}

	rec := doRequest(t, testRouter(resolver), "/datasets")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("тело = %q, ожидался пустой массив", body)
	}
}
