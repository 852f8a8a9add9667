package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc, header string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderRequestID, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestPaginationStyles(t *testing.T) {
	tests := []struct {
		name    string
		p       *Pagination
		want    []string
		wantNot []string
	}{
		{
			name:    "page",
			p:       PageOf(2, 10, 25),
			want:    []string{`"page":2`, `"per_page":10`, `"total_pages":3`, `"total_items":25`},
			wantNot: []string{"offset", "has_more"},
		},
		{
			name:    "window with more",
			p:       WindowOf(0, 50, 50, 120),
			want:    []string{`"offset":0`, `"limit":50`, `"has_more":true`, `"total_items":120`},
			wantNot: []string{"page", "per_page"},
		},
		{
			name: "last window",
			p:    WindowOf(100, 50, 20, 120),
			want: []string{`"offset":100`, `"has_more":false`},
		},
		{
			name: "empty page",
			p:    PageOf(1, 10, 0),
			want: []string{`"total_items":0`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.p)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got := string(raw)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%s missing %s", got, w)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(got, `"`+w+`"`) {
					t.Errorf("%s should not contain %s", got, w)
				}
			}
		})
	}
}

func TestClampWindow(t *testing.T) {
	tests := []struct {
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{0, 20, 0, 20},
		{-5, 20, 0, 20},
		{10, 0, 10, 50},
		{10, 500, 10, 50},
		{10, 200, 10, 200},
	}
	for _, tt := range tests {
		o, l := ClampWindow(tt.offset, tt.limit, 50, 200)
		if o != tt.wantOffset || l != tt.wantLimit {
			t.Errorf("ClampWindow(%d, %d) = %d, %d, want %d, %d", tt.offset, tt.limit, o, l, tt.wantOffset, tt.wantLimit)
		}
	}
}

func TestRequestID(t *testing.T) {
	echo := func(c *gin.Context) { Success(c, http.StatusOK, RequestID(c)) }

	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"generated", "", false},
		{"caller id reused", "edge-7f3a.42:1", true},
		{"control characters replaced", "abc\r\ninjected", false},
		{"spaces replaced", "a b", false},
		{"too long replaced", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(echo, tt.header)

			got := w.Header().Get(HeaderRequestID)
			if got == "" {
				t.Fatal("no request id header")
			}
			if (got == tt.header) != tt.reuse {
				t.Fatalf("header = %q, reuse want %v", got, tt.reuse)
			}

			var data string
			if err := json.Unmarshal(body["data"], &data); err != nil || data != got {
				t.Fatalf("context id = %q (%v), header %q", data, err, got)
			}
			var meta Metadata
			if err := json.Unmarshal(body["metadata"], &meta); err != nil || meta.RequestID != got {
				t.Fatalf("metadata = %+v (%v), want request id %q", meta, err, got)
			}
		})
	}
}

func TestFailEnvelope(t *testing.T) {
	w, body := serve(func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"email": "bad"})
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if string(body["data"]) != "null" {
		t.Fatalf("data = %s, want null", body["data"])
	}
	var e ErrorBody
	if err := json.Unmarshal(body["error"], &e); err != nil {
		t.Fatalf("error body: %v", err)
	}
	if e.Code != ErrValidation || e.Message != GetMessage(ErrValidation) || e.Fields["email"] != "bad" {
		t.Fatalf("error = %+v", e)
	}

	_, body = serve(func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrNotFound) }, "")
	if strings.Contains(string(body["error"]), "fields") {
		t.Fatalf("error = %s, want no fields", body["error"])
	}
}
