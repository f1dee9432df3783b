package shares_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mediavault-backend/internal/bootstrap"
	"mediavault-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
		PublicBaseURL:   "http://localhost:8080",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func uploadTestFile(t *testing.T, router *gin.Engine, guest string) string {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("shared content")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Guest-Id", guest)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return created.ID
}

type shareResponse struct {
	ID         string `json:"id"`
	ShareToken string `json:"shareToken"`
	ShareURL   string `json:"shareUrl"`
	HasQR      bool   `json:"hasQr"`
}

func createShare(t *testing.T, router *gin.Engine, guest, body string) (*httptest.ResponseRecorder, shareResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shares", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", guest)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	var share shareResponse
	if resp.Code == http.StatusCreated {
		if err := json.NewDecoder(resp.Body).Decode(&share); err != nil {
			t.Fatalf("decode share response: %v", err)
		}
	}
	return resp, share
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
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

func TestShareCreateIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, first := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if first.ShareToken == "" || !first.HasQR {
		t.Fatalf("expected token and QR, got %+v", first)
	}

	resp, second := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("re-create share: expected 201, got %d", resp.Code)
	}
	if second.ShareToken != first.ShareToken || second.ID != first.ID {
		t.Fatalf("re-sharing must serve the existing grant, got %q then %q", first.ShareToken, second.ShareToken)
	}
}

func TestShareCreateRequiresOwnership(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, _ := createShare(t, app.Router, "mallory", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", resp.Code)
	}
}

func TestShareAccessLimit(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, share := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`","maxAccessCount":2}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	download := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := download(); rec.Code != http.StatusOK {
			t.Fatalf("access %d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := download()
	if rec.Code != http.StatusGone {
		t.Fatalf("over-limit access: expected 410, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "share_limit_reached" {
		t.Fatalf("over-limit code = %q", code)
	}

	// The grant is now inactive, so the next attempt reads as inactive.
	rec = download()
	if rec.Code != http.StatusGone {
		t.Fatalf("post-limit access: expected 410, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "share_inactive" {
		t.Fatalf("post-limit code = %q", code)
	}

	// Re-sharing after exhaustion mints a fresh grant.
	resp, fresh := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("re-create after exhaustion: expected 201, got %d", resp.Code)
	}
	if fresh.ShareToken == share.ShareToken {
		t.Fatalf("expected a new token after exhaustion")
	}
}

func TestShareExpiryTransitionsOnce(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	resp, share := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`","expiresAt":"`+past+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusGone {
		t.Fatalf("expired access: expected 410, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "share_expired" {
		t.Fatalf("expired code = %q", code)
	}

	// The expiry already flipped the grant inactive.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if code := errorCode(t, rec); code != "share_inactive" {
		t.Fatalf("post-expiry code = %q", code)
	}
}

func TestShareRecreateRetiresStaleGrant(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	// An expired grant that was never accessed still sits active in the
	// store; nothing has lazily deactivated it yet.
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	resp, stale := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`","expiresAt":"`+past+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	resp, fresh := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("re-create share: expected 201, got %d", resp.Code)
	}
	if fresh.ShareToken == stale.ShareToken {
		t.Fatalf("expected a new token to replace the expired grant")
	}

	// The replacement retired the stale grant, so the file keeps a single
	// active grant and the old token reads inactive, not expired.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+stale.ShareToken, nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusGone {
		t.Fatalf("stale info: expected 410, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "share_inactive" {
		t.Fatalf("stale code = %q, want share_inactive", code)
	}
}

func TestShareInfoDownloadAndQR(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, share := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	// Info does not consume an access.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken, nil)
	info := httptest.NewRecorder()
	app.Router.ServeHTTP(info, req)
	if info.Code != http.StatusOK {
		t.Fatalf("info: expected 200, got %d", info.Code)
	}
	var meta struct {
		FileName string `json:"fileName"`
		FileSize int64  `json:"fileSize"`
	}
	if err := json.NewDecoder(info.Body).Decode(&meta); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if meta.FileName != "notes.txt" || meta.FileSize != int64(len("shared content")) {
		t.Fatalf("unexpected info %+v", meta)
	}

	// Anonymous download serves the payload.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
	download := httptest.NewRecorder()
	app.Router.ServeHTTP(download, req)
	if download.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", download.Code)
	}
	if download.Body.String() != "shared content" {
		t.Fatalf("downloaded bytes differ")
	}

	// QR is a PNG.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/qr", nil)
	qr := httptest.NewRecorder()
	app.Router.ServeHTTP(qr, req)
	if qr.Code != http.StatusOK {
		t.Fatalf("qr: expected 200, got %d", qr.Code)
	}
	if ct := qr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type = %q", ct)
	}
	if !bytes.HasPrefix(qr.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("qr body is not a PNG")
	}
}

func TestShareDeactivate(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, share := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	// Only the owner may turn a grant off.
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/shares/"+share.ID, nil)
	req.Header.Set("X-Guest-Id", "mallory")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner deactivate: expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/shares/"+share.ID, nil)
	req.Header.Set("X-Guest-Id", "alice")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusGone {
		t.Fatalf("deactivated access: expected 410, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "share_inactive" {
		t.Fatalf("deactivated code = %q", code)
	}
}

func TestFileDeleteKillsShares(t *testing.T) {
	app := newTestApp(t)
	fileID := uploadTestFile(t, app.Router, "alice")

	resp, share := createShare(t, app.Router, "alice", `{"fileId":"`+fileID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID, nil)
	req.Header.Set("X-Guest-Id", "alice")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete file: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+share.ShareToken+"/download", nil)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("share after file delete: expected 404, got %d", rec.Code)
	}
}
