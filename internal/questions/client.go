package questions

import (
	"context"
	"encoding/json"
	"errors"
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

// ErrNoQuestions is returned when the source responds with an empty set.
var ErrNoQuestions = errors.New("question source returned no questions")

// Client fetches questions from the remote question source. Fetches are
// cancelled through the passed context; there is no automatic retry — a
// failed fetch surfaces to the caller, and retrying is a user action.
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

// FetchOne retrieves a single question for exam, excluding already-seen
// question IDs.
func (c *Client) FetchOne(ctx context.Context, exam examinfo.Type, excludeIDs []string) (*Question, error) {
	q := url.Values{}
	q.Set("table_name", exam.TableName())
	if len(excludeIDs) > 0 {
		q.Set("exclude", strings.Join(excludeIDs, ","))
	}

	batch, err := c.fetch(ctx, 1, q)
	if err != nil {
		return nil, err
	}
	return &batch[0], nil
}

// FetchSet retrieves n questions for a full session, optionally filtered by
// category tags.
func (c *Client) FetchSet(ctx context.Context, exam examinfo.Type, n int, tags []string) ([]Question, error) {
	if n < 1 {
		return nil, fmt.Errorf("question count must be positive, got %d", n)
	}
	q := url.Values{}
	q.Set("table_name", exam.TableName())
	if len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}
	return c.fetch(ctx, n, q)
}

func (c *Client) fetch(ctx context.Context, n int, query url.Values) ([]Question, error) {
	u := c.baseURL + "/" + strconv.Itoa(n) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	c.log.Debug("fetching questions", zap.String("url", u))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question source: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var batch []Question
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(batch) == 0 {
		return nil, ErrNoQuestions
	}
	return batch, nil
}
