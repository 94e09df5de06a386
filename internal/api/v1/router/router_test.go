package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"simsync/internal/config"
	"simsync/internal/model"
	"simsync/internal/repository/memory"
	"simsync/internal/service"
	"simsync/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenVerifier accepts "token-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*model.Identity, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok || uid == "" {
		return nil, errors.New("bad token")
	}
	return &model.Identity{UID: uid, Email: uid + "@example.com", Name: strings.ToUpper(uid)}, nil
}

type testAPI struct {
	t     *testing.T
	h     http.Handler
	srv   *httptest.Server
	db    *memory.Store
	blobs *storage.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.Config{
		Environment:        "test",
		APIBaseURL:         "http://localhost/api",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		MaxUploadMB:        1,
	}
	db := memory.NewStore()
	blobs := storage.NewMemoryStore()
	logger := zerolog.Nop()

	subs := service.NewSubscriptionService(db.Users(), logger)
	h := New(cfg, Services{
		Verifier:      tokenVerifier{},
		Subscriptions: subs,
		Files:         service.NewFileService(db.Files(), db.Users(), subs, blobs, logger),
		Community:     service.NewCommunityService(db.Files(), db.SharedFiles(), db.Users(), subs, blobs, logger),
		Stripe:        service.NewStripeService(cfg, subs, logger),
	}, logger)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testAPI{t: t, h: h, srv: srv, db: db, blobs: blobs}
}

func (a *testAPI) send(req *http.Request, uid string) (int, map[string]any) {
	a.t.Helper()
	if uid != "" {
		req.Header.Set("Authorization", "Bearer token-"+uid)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func (a *testAPI) do(method, path, uid string, payload any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(a.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, uid)
}

func multipartBody(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (a *testAPI) upload(uid, name string, content []byte) (int, map[string]any) {
	a.t.Helper()
	buf, contentType := multipartBody(a.t, name, content)
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/files/upload", buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", contentType)
	return a.send(req, uid)
}

// shareNew uploads a file for uid and shares it, returning the shared file id.
func (a *testAPI) shareNew(uid, name string) string {
	a.t.Helper()
	status, body := a.upload(uid, name, []byte("contents of "+name))
	require.Equal(a.t, http.StatusOK, status, body)

	status, body = a.do(http.MethodPost, "/api/community/share", uid, map[string]any{
		"file_id":     body["file_id"],
		"description": "test share",
	})
	require.Equal(a.t, http.StatusOK, status, body)
	return body["shared_file_id"].(string)
}

func TestBannerAndHealth(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SimSync API is running!", body["message"])
	assert.Equal(t, "1.0.0", body["version"])

	status, body = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "simsync-api", body["service"])

	status, body = a.do(http.MethodGet, "/api/auth/test", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Backend is working!", body["message"])
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, body["detail"])

	status, _ = a.do(http.MethodGet, "/api/files/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/api/auth/verify", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer nope")
	status, body = a.send(req, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication failed", body["detail"])
}

func TestVerifyCreatesBasicProfile(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(http.MethodGet, "/api/auth/verify", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["uid"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "ALICE", body["display_name"])
	assert.Equal(t, "basic", body["subscription_tier"])
	assert.Equal(t, "active", body["subscription_status"])
	assert.EqualValues(t, 0, body["storage_used"])
	assert.EqualValues(t, 50, body["storage_limit"])

	u, err := a.db.Users().GetUserByID(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
}

func TestUserInfoIsSelfOnly(t *testing.T) {
	a := newTestAPI(t)
	a.do(http.MethodGet, "/api/auth/verify", "alice", nil)

	status, body := a.do(http.MethodGet, "/api/auth/user/alice", "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied", body["detail"])

	status, body = a.do(http.MethodGet, "/api/auth/user/alice", "alice", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["uid"])

	status, body = a.do(http.MethodGet, "/api/auth/user/carol", "carol", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["detail"])
}

func TestUpgradeSubscription(t *testing.T) {
	a := newTestAPI(t)

	status, _ := a.do(http.MethodPost, "/api/auth/upgrade-subscription/alice", "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.do(http.MethodPost, "/api/auth/upgrade-subscription/alice", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "premium", body["subscription_tier"])
	assert.EqualValues(t, 500, body["storage_limit"])

	_, body = a.do(http.MethodGet, "/api/auth/verify", "alice", nil)
	assert.Equal(t, "premium", body["subscription_tier"])
	assert.EqualValues(t, 500, body["storage_limit"])
}

func TestFileLifecycle(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.upload("alice", "save.sav", []byte("hello"))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "File uploaded successfully", body["message"])
	fileID := body["file_id"].(string)
	assert.NotEmpty(t, body["download_url"])

	status, body = a.do(http.MethodGet, "/api/files/list", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_count"])
	files := body["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "save.sav", files[0].(map[string]any)["name"])
	assert.EqualValues(t, 5, files[0].(map[string]any)["size"])

	status, _ = a.do(http.MethodDelete, "/api/files/delete/"+fileID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.do(http.MethodDelete, "/api/files/delete/"+fileID, "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "File deleted successfully", body["message"])

	status, _ = a.do(http.MethodDelete, "/api/files/delete/"+fileID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body = a.do(http.MethodGet, "/api/files/list", "alice", nil)
	assert.EqualValues(t, 0, body["total_count"])
}

func TestUploadValidation(t *testing.T) {
	a := newTestAPI(t)

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/files/upload", strings.NewReader("not multipart"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	status, _ := a.send(req, "alice")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.upload("alice", "", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, status)

	// Served in process so the oversized body is never half-written to a socket
	buf, contentType := multipartBody(t, "big.bin", bytes.Repeat([]byte{1}, 2*1024*1024))
	req = httptest.NewRequest(http.MethodPost, "/api/files/upload", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer token-alice")
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "File too large")
}

func TestCommunityShareListAndUnshare(t *testing.T) {
	a := newTestAPI(t)
	status, body := a.upload("alice", "world.sav", []byte("data"))
	require.Equal(t, http.StatusOK, status)
	fileID := body["file_id"].(string)

	status, body = a.do(http.MethodPost, "/api/community/share", "bob", map[string]any{"file_id": fileID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You can only share your own files", body["detail"])

	status, body = a.do(http.MethodPost, "/api/community/share", "alice", map[string]any{"file_id": fileID, "description": "my world"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "File shared successfully!", body["message"])
	sharedID := body["shared_file_id"].(string)
	assert.Equal(t, "/community/"+sharedID, body["community_url"])

	status, body = a.do(http.MethodPost, "/api/community/share", "alice", map[string]any{"file_id": fileID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "File is already shared", body["detail"])

	// Listing is public
	status, body = a.do(http.MethodGet, "/api/community/files", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	entry := body["files"].([]any)[0].(map[string]any)
	assert.Equal(t, sharedID, entry["id"])
	assert.Equal(t, "alice", entry["shared_by_uid"])
	assert.Equal(t, "ALICE", entry["shared_by"])
	assert.Equal(t, "world.sav", entry["name"])
	assert.Equal(t, "my world", entry["description"])

	status, body = a.do(http.MethodDelete, "/api/community/"+sharedID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You can only unshare your own files", body["detail"])

	status, body = a.do(http.MethodDelete, "/api/community/"+sharedID, "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "File removed from community sharing", body["message"])

	_, body = a.do(http.MethodGet, "/api/community/files", "", nil)
	assert.EqualValues(t, 0, body["total"])
}

func TestCommunityListPaging(t *testing.T) {
	a := newTestAPI(t)
	for i := range 3 {
		a.shareNew("alice", fmt.Sprintf("f%d.sav", i))
	}

	_, body := a.do(http.MethodGet, "/api/community/files?limit=2", "", nil)
	assert.EqualValues(t, 2, body["total"])
	_, body = a.do(http.MethodGet, "/api/community/files?limit=2&offset=2", "", nil)
	assert.EqualValues(t, 1, body["total"])
}

func TestCommunityRate(t *testing.T) {
	a := newTestAPI(t)
	sharedID := a.shareNew("alice", "world.sav")
	path := "/api/community/" + sharedID + "/rate"

	status, body := a.do(http.MethodPost, path, "alice", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You cannot rate your own file", body["detail"])

	for _, bad := range []int{0, 6} {
		status, body = a.do(http.MethodPost, path, "bob", map[string]any{"rating": bad})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Rating must be between 1 and 5", body["detail"])
	}

	status, body = a.do(http.MethodPost, path, "bob", map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Rated 4 stars!", body["message"])
	assert.EqualValues(t, 4, body["your_rating"])
	assert.EqualValues(t, 4, body["average_rating"])
	assert.EqualValues(t, 1, body["total_ratings"])
	assert.Nil(t, body["previous_rating"])

	status, body = a.do(http.MethodPost, path, "carol", map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4.5, body["average_rating"])
	assert.EqualValues(t, 2, body["total_ratings"])

	status, body = a.do(http.MethodPost, path, "bob", map[string]any{"rating": 2})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 4, body["previous_rating"])
	assert.EqualValues(t, 3.5, body["average_rating"])
	assert.EqualValues(t, 2, body["total_ratings"])

	status, _ = a.do(http.MethodPost, "/api/community/missing/rate", "bob", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCommunityDownloadQuota(t *testing.T) {
	a := newTestAPI(t)
	sharedID := a.shareNew("alice", "world.sav")
	path := "/api/community/" + sharedID + "/download"

	for i := range model.BasicDailyDownloadLimit {
		status, body := a.do(http.MethodPost, path, "bob", nil)
		require.Equal(t, http.StatusOK, status, "download %d: %v", i+1, body)
		assert.Equal(t, "world.sav", body["file_name"])
		assert.NotEmpty(t, body["download_url"])
	}

	status, body := a.do(http.MethodPost, path, "bob", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Daily download limit reached. Upgrade to Premium for unlimited downloads!", body["detail"])

	// Premium users are not limited
	status, _ = a.do(http.MethodPost, "/api/auth/upgrade-subscription/bob", "bob", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = a.do(http.MethodPost, path, "bob", nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = a.do(http.MethodGet, "/api/community/files", "", nil)
	entry := body["files"].([]any)[0].(map[string]any)
	assert.EqualValues(t, model.BasicDailyDownloadLimit+1, entry["downloads"])
}

func TestCommunityDownloadMissing(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(http.MethodPost, "/api/community/missing/download", "bob", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Shared file not found", body["detail"])

	sharedID := a.shareNew("alice", "gone.sav")
	sf, err := a.db.SharedFiles().GetSharedFileByID(context.Background(), sharedID)
	require.NoError(t, err)
	require.NoError(t, a.blobs.Delete(context.Background(), sf.StoragePath))

	status, body = a.do(http.MethodPost, "/api/community/"+sharedID+"/download", "bob", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "File not found in storage", body["detail"])
}

func TestCheckoutValidation(t *testing.T) {
	a := newTestAPI(t)

	status, _ := a.do(http.MethodPost, "/api/payments/create-checkout-session", "", map[string]any{"user_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := a.do(http.MethodPost, "/api/payments/create-checkout-session", "", map[string]any{
		"user_id":     "alice",
		"success_url": "https://simsync.dev/success",
		"cancel_url":  "https://simsync.dev/cancel",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Stripe price ID not configured", body["detail"])
}

func TestWebhookUpgradesUser(t *testing.T) {
	a := newTestAPI(t)

	event := `{"id":"evt_1","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"alice"}}}`
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/payments/webhook", strings.NewReader(event))
	require.NoError(t, err)
	status, body := a.send(req, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	u, err := a.db.Users().GetUserByID(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.TierPremium, u.SubscriptionTier)

	req, err = http.NewRequest(http.MethodPost, a.srv.URL+"/api/payments/webhook", strings.NewReader("{"))
	require.NoError(t, err)
	status, _ = a.send(req, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCORSPreflight(t *testing.T) {
	a := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, a.srv.URL+"/api/files/list", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
