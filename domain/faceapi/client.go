// Package faceapi is a small client for a Face-API style detect endpoint that
// returns per-face smile scores.
package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/domain/smile"
)

const keyHeader = "Ocp-Apim-Subscription-Key"

// ErrNoEndpoint is returned when the client has no endpoint configured.
var ErrNoEndpoint = errors.New("faceapi: endpoint not configured")

// Client calls the detect endpoint. It is safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	endpoint string
	key      string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient returns a client for endpoint (e.g. https://host/face/v1.0).
// A nil httpClient uses a client with a 15s timeout.
func NewClient(endpoint, key string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{http: httpClient, logger: logger}
	c.Configure(endpoint, key)
	return c
}

// Configure replaces the endpoint and subscription key.
func (c *Client) Configure(endpoint, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	c.key = key
}

func (c *Client) target() (endpoint, key string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint, c.key
}

var _ smile.AttributeService = (*Client)(nil)

type faceRectangle struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type faceAttributes struct {
	Smile float64 `json:"smile"`
}

type detectedFace struct {
	FaceID         string         `json:"faceId,omitempty"`
	FaceRectangle  faceRectangle  `json:"faceRectangle"`
	FaceAttributes faceAttributes `json:"faceAttributes"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("faceapi: http %d", e.StatusCode)
	}
	return fmt.Sprintf("faceapi: http %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// DetectSmile posts a JPEG image and returns the faces with smile scores.
func (c *Client) DetectSmile(ctx context.Context, jpeg []byte) ([]smile.Face, error) {
	if c == nil {
		return nil, ErrNoEndpoint
	}
	endpoint, key := c.target()
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(endpoint + "/detect")
	if err != nil {
		return nil, fmt.Errorf("faceapi: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("returnFaceId", "false")
	q.Set("returnFaceLandmarks", "false")
	q.Set("returnFaceAttributes", "smile")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(jpeg))
	if err != nil {
		return nil, fmt.Errorf("faceapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if key != "" {
		req.Header.Set(keyHeader, key)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faceapi: detect: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("faceapi: read body: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("faceapi detect", "status", resp.StatusCode, "bytes", len(jpeg), "elapsed", time.Since(start))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Code, apiErr.Message = eb.Error.Code, eb.Error.Message
		}
		return nil, apiErr
	}
	var faces []detectedFace
	if err := json.Unmarshal(body, &faces); err != nil {
		return nil, fmt.Errorf("faceapi: decode response: %w", err)
	}
	out := make([]smile.Face, 0, len(faces))
	for _, f := range faces {
		out = append(out, smile.Face{
			ID: f.FaceID,
			Rect: geometry.Rect{
				X:      float64(f.FaceRectangle.Left),
				Y:      float64(f.FaceRectangle.Top),
				Width:  float64(f.FaceRectangle.Width),
				Height: float64(f.FaceRectangle.Height),
			},
			Smile: f.FaceAttributes.Smile,
		})
	}
	return out, nil
}
