package app

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStartHTTP_ServesMetricsAndShutsDown(t *testing.T) {
	srv, err := StartHTTP("127.0.0.1:0", nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	url := "http://" + srv.Addr().String() + "/metrics"

	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "marks_") {
		t.Fatalf("status %d, body %.200s", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if _, err := http.Get(url); err == nil {
		t.Fatal("server still accepting after shutdown")
	}
}

func TestStartHTTP_BadAddr(t *testing.T) {
	if _, err := StartHTTP("127.0.0.1:-1", nil, zap.NewNop()); err == nil {
		t.Fatal("want listen error")
	}
}
