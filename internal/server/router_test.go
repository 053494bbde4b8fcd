package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluemoon/internal/config"
	"bluemoon/internal/database/dbtest"
	"bluemoon/internal/domain"
	"bluemoon/internal/modules/realtime"
	"bluemoon/internal/pkg/session"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, base string) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: base, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (c *client) cookieHeader() http.Header {
	u, _ := url.Parse(c.base)
	h := http.Header{}
	for _, ck := range c.http.Jar.Cookies(u) {
		h.Add("Cookie", ck.Name+"="+ck.Value)
	}
	return h
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "test",
		PasswordScheme: "plain",
		Session: config.SessionConfig{
			Secret:         "router-test-secret",
			CookieName:     "bluemoon.sid",
			TTL:            time.Hour,
			CookieSameSite: "Lax",
		},
		Building: config.BuildingInfo{Name: "BlueMoon"},
	}
}

func startServer(t *testing.T) (string, *realtime.Hub) {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.Create(t, db,
		&domain.User{Username: "admin", PasswordHash: "admin123", Role: domain.RoleAdmin},
		&domain.User{Username: "p101", PasswordHash: "resident", Role: domain.RoleResident},
	)

	cfg := testConfig()
	hub := realtime.NewHub(nil)
	t.Cleanup(hub.Close)
	router, err := NewRouter(Deps{
		Config:   cfg,
		DB:       db,
		Sessions: session.NewManager(cfg.Session.Secret, cfg.Session.TTL, session.NewMemoryStore()),
		Hub:      hub,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL, hub
}

func TestRouterRequiresSession(t *testing.T) {
	base, _ := startServer(t)
	anon := newClient(t, base)

	status, body := anon.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bluemoon-api", body["service"])

	status, _ = anon.do(http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	resident := newClient(t, base)
	status, _ = resident.do(http.MethodPost, "/api/login", map[string]string{"username": "p101", "password": "resident"})
	require.Equal(t, http.StatusOK, status)

	status, _ = resident.do(http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = resident.do(http.MethodPost, "/api/rooms", map[string]string{"room_no": "X-1"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, body["ok"])
}

func TestRouterLedgerFlow(t *testing.T) {
	base, hub := startServer(t)
	admin := newClient(t, base)

	status, _ := admin.do(http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, status)

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/api/ws/ledger"
	feed, _, err := websocket.DefaultDialer.Dial(wsURL, admin.cookieHeader())
	require.NoError(t, err)
	defer feed.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	status, body := admin.do(http.MethodPost, "/api/rooms", map[string]any{
		"room_no":     "A-101",
		"person_data": map[string]string{"full_name": "Nguyễn Văn A"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	roomID := body["room_id"].(float64)

	status, body = admin.do(http.MethodPost, "/api/fees", map[string]any{
		"room_id":    roomID,
		"fee_name":   "Phí quản lý",
		"fee_type":   "room",
		"period":     "2026-10",
		"quantity":   70,
		"unit_price": 7000,
	})
	require.Equal(t, http.StatusCreated, status, body)
	feeID := body["fee"].(map[string]any)["id"].(float64)

	status, body = admin.do(http.MethodPost, "/api/payments", map[string]any{"fee_id": feeID, "amount": 490000})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "PAID", body["status"])

	_ = feed.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type string `json:"type"`
	}
	require.NoError(t, feed.ReadJSON(&event))
	assert.Equal(t, "payment.recorded", event.Type)

	status, body = admin.do(http.MethodDelete, "/api/rooms/"+jsonID(roomID), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["deleted_fees"])
	assert.Equal(t, float64(1), body["deleted_payments"])
	assert.Equal(t, float64(1), body["deleted_persons"])

	status, _ = admin.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = admin.do(http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouterRejectsUnknownPasswordScheme(t *testing.T) {
	cfg := testConfig()
	cfg.PasswordScheme = "md5"
	_, err := NewRouter(Deps{Config: cfg, DB: dbtest.Open(t)})
	assert.Error(t, err)
}

func jsonID(v float64) string {
	b, _ := json.Marshal(int64(v))
	return string(b)
}
