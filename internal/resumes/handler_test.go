package resumes

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-ingest/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/v1")
	rg.Use(middleware.Identity())
	NewHandler(svc).RegisterRoutes(rg)
	return r
}

func multipartBody(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestUploadEndpointCreatesResume(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", testDocx(t, "Jane Doe", "Engineer"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ResumeID string `json:"resumeId"`
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ResumeID == "" || created.FileName != "resume.docx" {
		t.Fatalf("unexpected response: %+v", created)
	}
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != ErrorCodeValidation {
		t.Fatalf("unexpected error code: %s", code)
	}
}

func TestUploadEndpointRejectsOversizedFile(t *testing.T) {
	svc, _, _, client := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", bytes.Repeat([]byte("x"), 11<<20))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", resp.Code, resp.Body.String())
	}
	if client.calls != 0 {
		t.Fatal("pipeline should not run for an oversized upload")
	}
}

func TestUploadEndpointRequiresIdentity(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", testDocx(t, "Jane Doe"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestUploadEndpointMapsUpstreamFailure(t *testing.T) {
	svc, _, _, client := newTestService(t)
	client.err = errors.New("timeout")
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", testDocx(t, "Jane Doe", "Engineer"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != ErrorCodeUpstream {
		t.Fatalf("unexpected error code: %s", code)
	}
}

func TestUploadEndpointRejectsUnsupportedFile(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCurrentEndpointEmptyState(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/current", nil)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		ResumeID *string `json:"resumeId"`
		URL      *string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ResumeID != nil || body.URL != nil {
		t.Fatalf("expected null fields, got %+v", body)
	}
}

func TestCurrentEndpointAfterUpload(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", testDocx(t, "Jane Doe", "Engineer"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", resp.Code, resp.Body.String())
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/current", nil)
	reqGet.Header.Set("X-User-Id", "user-1")
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respGet.Code)
	}
	var current struct {
		ResumeID *string `json:"resumeId"`
		FileName *string `json:"fileName"`
		URL      *string `json:"url"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&current); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if current.ResumeID == nil || *current.ResumeID == "" {
		t.Fatal("expected resumeId")
	}
	if current.URL == nil || *current.URL == "" {
		t.Fatal("expected signed url")
	}
	if current.FileName == nil || *current.FileName != "resume.docx" {
		t.Fatalf("unexpected fileName: %v", current.FileName)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	router := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "resume.docx", testDocx(t, "Jane Doe", "Engineer"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d", resp.Code)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes", nil)
	reqDel.Header.Set("X-User-Id", "user-1")
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)

	if respDel.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", respDel.Code)
	}
	if _, err := repo.CurrentByUser(reqDel.Context(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected resume removed")
	}
}
