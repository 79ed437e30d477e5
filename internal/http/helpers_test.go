package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopmart/internal/catalog"
	"shopmart/internal/config"
	"shopmart/internal/events"
	"shopmart/internal/http/handlers"
	"shopmart/internal/repos"
)

const fakeProducts = `[
  {"id":1,"title":"Fjallraven Backpack","price":10.00,"description":"Fits 15 inch laptops","category":"men's clothing","image":"https://img.test/1.jpg","rating":{"rate":3.9,"count":120}},
  {"id":2,"title":"Silver Ring","price":5.00,"description":"Sterling","category":"jewelery","image":"https://img.test/2.jpg","rating":{"rate":4.6,"count":400}},
  {"id":3,"title":"Portable Drive","price":64.00,"description":"2TB","category":"electronics","image":"https://img.test/3.jpg","rating":{"rate":3.3,"count":203}}
]`

// fakeCatalog serves the catalog API from fixed data. Set broken to make
// every request fail with 500.
type fakeCatalog struct {
	srv    *httptest.Server
	broken atomic.Bool
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	fc := &fakeCatalog{}
	var all []map[string]any
	if err := json.Unmarshal([]byte(fakeProducts), &all); err != nil {
		t.Fatal(err)
	}
	byID := map[string][]byte{}
	byCat := map[string][]map[string]any{}
	for _, p := range all {
		b, _ := json.Marshal(p)
		byID[jsonNumber(p["id"])] = b
		cat := p["category"].(string)
		byCat[cat] = append(byCat[cat], p)
	}

	fc.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fc.broken.Load() {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.EscapedPath()
		switch {
		case path == "/products":
			_, _ = io.WriteString(w, fakeProducts)
		case path == "/products/categories":
			_, _ = io.WriteString(w, `["electronics","jewelery","men's clothing"]`)
		case strings.HasPrefix(path, "/products/category/"):
			cat, _ := url.PathUnescape(strings.TrimPrefix(path, "/products/category/"))
			b, _ := json.Marshal(byCat[cat])
			_, _ = w.Write(b)
		case strings.HasPrefix(path, "/products/"):
			// unknown ids get 200 with an empty body, like the real API
			_, _ = w.Write(byID[strings.TrimPrefix(path, "/products/")])
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fc.srv.Close)
	return fc
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

type testApp struct {
	app     *fiber.App
	catalog *fakeCatalog
	orders  *repos.OrderRepo
	deps    *handlers.Deps
}

func newTestApp(t *testing.T, tweak ...func(*handlers.ServerOptions)) *testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", TemplatesDir: "../../web/templates"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	fc := newFakeCatalog(t)
	api := catalog.NewClient(fc.srv.URL, 5*time.Second)
	deps := handlers.NewDeps(db, api, events.Nop{})

	opts := handlers.ServerOptions{
		TemplatesDir: cfg.TemplatesDir,
		BodyLimit:    1 << 20,
		RateMax:      100,
		RateWindow:   time.Minute,
		OrderRateMax: 100,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return &testApp{
		app:     handlers.NewServer(opts, deps),
		catalog: fc,
		orders:  repos.NewOrderRepo(db),
		deps:    deps,
	}
}

// client keeps a session and CSRF cookie across requests.
type client struct {
	t    *testing.T
	ta   *testApp
	sid  string
	csrf string
}

func (ta *testApp) newClient(t *testing.T) *client {
	t.Helper()
	cl := &client{t: t, ta: ta, sid: uuid.NewString()}
	resp := cl.get("/healthz")
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" {
			cl.csrf = c.Value
		}
	}
	if cl.csrf == "" {
		t.Fatal("csrf token missing")
	}
	return cl
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: cl.sid})
	if cl.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: cl.csrf})
	}
	resp, err := cl.ta.app.Test(req, -1)
	if err != nil {
		cl.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", cl.csrf)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func checkoutForm() url.Values {
	return url.Values{
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"email":      {"ada@example.com"},
		"phone":      {"555-123-4567"},
		"address":    {"1 Main St"},
		"city":       {"Springfield"},
		"state":      {"IL"},
		"zip":        {"62704"},
		"cardName":   {"Ada Lovelace"},
		"cardNumber": {"4111 1111 1111 1111"},
		"expDate":    {"12/30"},
		"cvv":        {"123"},
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) ([]logEntry, string) {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, buf.String()
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
