// Package recommender is the client side of the recommendation service. The
// algorithm lives in a separate service; this package only resolves
// (course id, n) to an ordered list of recommended course ids.
package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Lookup resolves up to n recommended course ids for a course, best first.
type Lookup interface {
	Recommend(ctx context.Context, courseID int64, n int) ([]int64, error)
}

// Client calls the recommendation service over HTTP:
//
//	GET {base}/recommendations?course_id=<id>&n=<n>
//	→ {"course_ids": [875615, 1070968, ...]}
type Client struct {
	baseURL string
	http    *http.Client
}

// compile-time check that *Client implements Lookup
var _ Lookup = (*Client)(nil)

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type recommendResponse struct {
	CourseIDs []int64 `json:"course_ids"`
}

// Recommend fetches the recommended course ids, preserving the order the
// service returned them in.
func (c *Client) Recommend(ctx context.Context, courseID int64, n int) ([]int64, error) {
	url := fmt.Sprintf("%s/recommendations?course_id=%d&n=%d", c.baseURL, courseID, n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("recommender: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommender: calling recommendation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender: service returned status %d", resp.StatusCode)
	}

	var body recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("recommender: decoding response: %w", err)
	}

	return body.CourseIDs, nil
}
