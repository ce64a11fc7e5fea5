package altme

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	drepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
)

// Client implements SentimentData backed by the alternative.me
// Fear & Greed index API.
type Client struct {
	baseURL string
	fetcher *xhttp.Fetcher
}

func New(baseURL string, fetcher *xhttp.Fetcher) drepo.SentimentData {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		fetcher: fetcher,
	}
}

// The API encodes the index value as a string, e.g. {"value":"76"}.
type fngResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
	} `json:"data"`
}

// FearGreed returns the current index value (0..100) and its label,
// e.g. 76, "Greed".
func (c *Client) FearGreed(ctx context.Context) (int, string, error) {
	var out fngResponse
	err := c.fetcher.Fetch(ctx, models.SourceSentiment, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/fng/",
	}, &out)
	if err != nil {
		return 0, "", err
	}

	if len(out.Data) == 0 {
		return 0, "", fmt.Errorf("fear & greed response has no data points")
	}
	value, err := strconv.Atoi(out.Data[0].Value)
	if err != nil {
		return 0, "", fmt.Errorf("parse fear & greed value %q: %w", out.Data[0].Value, err)
	}
	if value < 0 || value > 100 {
		return 0, "", fmt.Errorf("fear & greed value %d out of range", value)
	}
	return value, out.Data[0].ValueClassification, nil
}
