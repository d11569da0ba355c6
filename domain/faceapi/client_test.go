package faceapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_DetectSmile(t *testing.T) {
	var gotKey, gotType, gotAttrs string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/face/v1.0/detect" {
			http.Error(w, "bad route", http.StatusNotFound)
			return
		}
		gotKey = r.Header.Get(keyHeader)
		gotType = r.Header.Get("Content-Type")
		gotAttrs = r.URL.Query().Get("returnFaceAttributes")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"faceRectangle":{"top":10,"left":20,"width":30,"height":40},"faceAttributes":{"smile":0.87}},
			{"faceRectangle":{"top":1,"left":2,"width":3,"height":4},"faceAttributes":{"smile":0.01}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/face/v1.0/", "secret", srv.Client(), nil)
	faces, err := c.DetectSmile(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if gotKey != "secret" || gotType != "application/octet-stream" || gotAttrs != "smile" || string(gotBody) != "jpeg-bytes" {
		t.Fatalf("unexpected request key=%q type=%q attrs=%q body=%q", gotKey, gotType, gotAttrs, gotBody)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got=%d", len(faces))
	}
	f := faces[0]
	if f.Rect.X != 20 || f.Rect.Y != 10 || f.Rect.Width != 30 || f.Rect.Height != 40 || f.Smile != 0.87 {
		t.Fatalf("unexpected face %+v", f)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"RateLimitExceeded","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client(), nil)
	_, err := c.DetectSmile(context.Background(), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got=%v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Code != "RateLimitExceeded" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "", srv.Client(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.DetectSmile(ctx, []byte("x")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got=%v", err)
	}
}

func TestClient_NoEndpoint(t *testing.T) {
	c := NewClient("", "", nil, nil)
	if _, err := c.DetectSmile(context.Background(), nil); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint, got=%v", err)
	}
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "", srv.Client(), nil)
	if _, err := c.DetectSmile(context.Background(), nil); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClient_Configure(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(keyHeader)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient("", "", srv.Client(), nil)
	if _, err := c.DetectSmile(context.Background(), nil); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint before configure, got=%v", err)
	}
	c.Configure(" "+srv.URL+"/ ", "k2")
	faces, err := c.DetectSmile(context.Background(), []byte("x"))
	if err != nil || len(faces) != 0 {
		t.Fatalf("unexpected result faces=%v err=%v", faces, err)
	}
	if gotKey != "k2" {
		t.Fatalf("expected new key, got=%q", gotKey)
	}
}
