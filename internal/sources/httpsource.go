package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ybotello/finstream-backend/internal/domain"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
)

type HTTPSourceConfig struct {
	Name    string
	URL     string
	Timeout time.Duration
}

// HTTPSource fetches a JSON array of transactions from a single endpoint.
type HTTPSource struct {
	log    *logger.Logger
	name   string
	url    string
	client *http.Client
}

func NewHTTPSource(baseLog *logger.Logger, cfg HTTPSourceConfig) (*HTTPSource, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, fmt.Errorf("source name required")
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("source %s: url required", name)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSource{
		log:    baseLog.With("source", name),
		name:   name,
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Fetch(ctx context.Context) ([]*domain.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source %s: unexpected status %d: %s", s.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []*domain.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("source %s: decode: %w", s.name, err)
	}

	for _, row := range rows {
		normalize(row, s.name)
	}
	s.log.Debug("fetched transactions", "count", len(rows))
	return rows, nil
}

// normalize stamps source provenance and fills defaults on anything the
// upstream left blank.
func normalize(t *domain.Transaction, sourceName string) {
	if t.SourceSystem == "" {
		t.SourceSystem = sourceName
	}
	if t.Category == "" {
		t.Category = domain.CategoryUnknown
	} else if c, ok := domain.ParseCategory(string(t.Category)); !ok {
		t.Category = domain.CategoryUnknown
	} else {
		t.Category = c
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
}
