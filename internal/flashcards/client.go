package flashcards

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/examinfo"
)

// Client fetches flashcards from the remote flashcard source. Unlike the
// question source, an empty result is not an error: an exam may simply
// have no cards yet.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a Client for the given endpoint.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Fetch retrieves up to n flashcards for exam.
func (c *Client) Fetch(ctx context.Context, exam examinfo.Type, n int) ([]Card, error) {
	if n < 1 {
		return nil, fmt.Errorf("card count must be positive, got %d", n)
	}
	q := url.Values{}
	q.Set("table_name", exam.FlashcardTable())
	u := c.baseURL + "/" + strconv.Itoa(n) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	c.log.Debug("fetching flashcards", zap.String("url", u))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch flashcards: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flashcard source: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var cards []Card
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	return cards, nil
}
