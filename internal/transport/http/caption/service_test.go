package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stdimage "image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

type stubProvider struct {
	resp     providers.CaptionResponse
	err      error
	lastReq  providers.CaptionRequest
	captured bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Caption(ctx context.Context, req providers.CaptionRequest) (providers.CaptionResponse, error) {
	p.lastReq = req
	p.captured = true
	return p.resp, p.err
}

func newTestService(t *testing.T, provider providers.Provider, apiKey string) (*Service, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := utils.NewLogger(&utils.LogCfg{
		LogLevel: "error",
		LogDir:   t.TempDir(),
		LogFile:  "test.log",
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.Environment = "test"
	if p, ok := cfg.Providers[cfg.Selected.Provider]; ok {
		p.APIKey = apiKey
		cfg.Providers[cfg.Selected.Provider] = p
	}

	svc, err := NewService(cfg, logger, provider)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	engine := gin.New()
	api := engine.Group("/api")
	if err := svc.Register(context.Background(), engine, api); err != nil {
		t.Fatalf("register: %v", err)
	}
	return svc, engine
}

func jpegBase64(t *testing.T) string {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func postCaption(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/caption", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCaption_NoImage(t *testing.T) {
	_, engine := newTestService(t, &stubProvider{}, "")

	for _, body := range []string{`{}`, `{"image":""}`, ``, `not json`} {
		w := postCaption(t, engine, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("body %q: decode: %v", body, err)
		}
		if resp.Error != "No image provided." {
			t.Errorf("body %q: error = %q, want %q", body, resp.Error, "No image provided.")
		}
	}
}

func TestCaption_InvalidBase64(t *testing.T) {
	_, engine := newTestService(t, &stubProvider{}, "")

	w := postCaption(t, engine, `{"image":"!!!not-base64!!!"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Invalid image data." {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestCaption_NonImagePayload(t *testing.T) {
	provider := &stubProvider{}
	_, engine := newTestService(t, provider, "")

	payload := base64.StdEncoding.EncodeToString([]byte("just some text, definitely not an image"))
	w := postCaption(t, engine, `{"image":"`+payload+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if provider.captured {
		t.Error("provider must not be called for invalid payloads")
	}
}

func TestCaption_Success(t *testing.T) {
	provider := &stubProvider{
		resp: providers.CaptionResponse{Caption: "A dog running in a park."},
	}
	_, engine := newTestService(t, provider, "sk-test")

	w := postCaption(t, engine, `{"image":"`+jpegBase64(t)+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp CaptionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Caption != "A dog running in a park." {
		t.Errorf("caption = %q", resp.Caption)
	}

	if provider.lastReq.Format != "jpeg" {
		t.Errorf("forwarded format = %q", provider.lastReq.Format)
	}
	if provider.lastReq.ScratchPath == "" {
		t.Error("no scratch path forwarded")
	}
}

func TestCaption_ScratchFileRemoved(t *testing.T) {
	provider := &stubProvider{
		resp: providers.CaptionResponse{Caption: "ok"},
	}
	_, engine := newTestService(t, provider, "sk-test")

	postCaption(t, engine, `{"image":"`+jpegBase64(t)+`"}`)

	if provider.lastReq.ScratchPath == "" {
		t.Fatal("no scratch path recorded")
	}
	if _, err := os.Stat(provider.lastReq.ScratchPath); !os.IsNotExist(err) {
		t.Errorf("scratch file %s still exists", provider.lastReq.ScratchPath)
	}
}

func TestCaption_ProviderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		class      providers.Class
		wantStatus int
	}{
		{"rate limited", providers.ClassRateLimited, http.StatusTooManyRequests},
		{"auth", providers.ClassAuth, http.StatusBadGateway},
		{"timeout", providers.ClassTimeout, http.StatusGatewayTimeout},
		{"unreachable", providers.ClassUnreachable, http.StatusBadGateway},
		{"upstream", providers.ClassUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{
				err: &providers.Error{
					Class:    tt.class,
					Provider: "stub",
					Message:  "upstream call failed",
					Detail:   "upstream detail text",
				},
			}
			_, engine := newTestService(t, provider, "sk-test")

			w := postCaption(t, engine, `{"image":"`+jpegBase64(t)+`"}`)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error == "" {
				t.Error("missing error message")
			}
			if resp.Details != "upstream detail text" {
				t.Errorf("details = %q", resp.Details)
			}
		})
	}
}

func TestCaption_RateLimitedWording(t *testing.T) {
	provider := &stubProvider{
		err: &providers.Error{
			Class:    providers.ClassRateLimited,
			Provider: "stub",
			Message:  "429 from upstream",
		},
	}
	_, engine := newTestService(t, provider, "sk-test")

	w := postCaption(t, engine, `{"image":"`+jpegBase64(t)+`"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	lower := strings.ToLower(resp.Error)
	if !strings.Contains(lower, "rate") && !strings.Contains(lower, "too many") {
		t.Errorf("rate limit message does not mention the limit: %q", resp.Error)
	}
}

func TestHealth(t *testing.T) {
	for _, hasToken := range []bool{true, false} {
		apiKey := ""
		if hasToken {
			apiKey = "sk-test"
		}
		_, engine := newTestService(t, &stubProvider{}, apiKey)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != "OK" {
			t.Errorf("status field = %q", resp.Status)
		}
		if resp.Timestamp == "" {
			t.Error("missing timestamp")
		}
		if resp.Environment != "test" {
			t.Errorf("environment = %q", resp.Environment)
		}
		if resp.HasAPIToken != hasToken {
			t.Errorf("hasApiToken = %v, want %v", resp.HasAPIToken, hasToken)
		}
		if strings.Contains(w.Body.String(), "sk-test") {
			t.Error("health response leaks the credential")
		}
	}
}
