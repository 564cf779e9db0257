// internal/similarity/http.go
package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "match-engine/internal/common/errors"
)

// HTTPProvider delegates similarity to an external embedding service.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type similarityRequest struct {
	A []float64 `json:"a"`
	B []float64 `json:"b"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

func (p *HTTPProvider) Similarity(ctx context.Context, a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, apperrors.NewMissingEmbeddingError("")
	}

	body, err := json.Marshal(similarityRequest{A: a, B: b})
	if err != nil {
		return 0, apperrors.NewSimilarityServiceFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, apperrors.NewSimilarityServiceFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, apperrors.NewSimilarityTimeoutError()
		}
		return 0, apperrors.NewSimilarityServiceFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.NewSimilarityServiceFailedError(
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var result similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.NewSimilarityServiceFailedError(err)
	}

	if result.Similarity < 0 {
		return 0, nil
	}
	if result.Similarity > 1 {
		return 1, nil
	}
	return result.Similarity, nil
}
