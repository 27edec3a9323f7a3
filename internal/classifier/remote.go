package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	maxResponseBytes     = 1 << 16
)

type prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Remote calls an HTTP inference service. The service accepts the raw image
// bytes on POST {endpoint}/predict and answers {"label": "...", "confidence": 0.9}.
// GET {endpoint}/health is used as a readiness probe.
type Remote struct {
	endpoint string
	client   *http.Client
	metrics  Metrics
	logger   *zap.Logger
}

// NewRemote builds a Remote classifier for endpoint.
func NewRemote(endpoint string, client *http.Client, metrics Metrics, logger *zap.Logger) (*Remote, error) {
	if endpoint == "" {
		return nil, errors.New("classifier endpoint is required")
	}
	if metrics == nil {
		return nil, errors.New("classifier metrics is required")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}
	return &Remote{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Ping checks that the inference service is ready.
func (r *Remote) Ping(ctx context.Context) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("ping", err, started)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("classifier health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier health: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Classify implements Classifier.
func (r *Remote) Classify(ctx context.Context, imagePath string) (_ model.Material, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("classify", err, started)
	}()

	body, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", imagePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/predict", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier predict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("classifier predict: unexpected status %d", resp.StatusCode)
	}

	var p prediction
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&p); err != nil {
		return "", fmt.Errorf("decode prediction: %w", err)
	}

	material := model.ParseMaterial(p.Label)
	r.logger.Debug("classified sample",
		zap.String("path", imagePath),
		zap.String("label", p.Label),
		zap.String("material", string(material)),
		zap.Float64("confidence", p.Confidence),
	)
	return material, nil
}
