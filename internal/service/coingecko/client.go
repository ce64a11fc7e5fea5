package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	drepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
)

// symbolFor maps CoinGecko asset ids to their ticker symbols as used by the
// /global dominance map and the /simple/price vs_currencies parameter.
var symbolFor = map[string]string{
	"bitcoin":  "btc",
	"ethereum": "eth",
	"solana":   "sol",
}

// Client implements MarketData backed by the CoinGecko REST API.
type Client struct {
	baseURL   string
	primary   string
	secondary string
	fetcher   *xhttp.Fetcher
}

// New creates a CoinGecko MarketData client.
func New(baseURL, primary, secondary string, fetcher *xhttp.Fetcher) drepo.MarketData {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		primary:   primary,
		secondary: secondary,
		fetcher:   fetcher,
	}
}

func symbol(id string) string {
	if s, ok := symbolFor[id]; ok {
		return s
	}
	return id
}

type globalResponse struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

// GlobalDominance returns the primary asset's market-cap share in percent.
func (c *Client) GlobalDominance(ctx context.Context) (float64, error) {
	var out globalResponse
	err := c.fetcher.Fetch(ctx, models.SourceGlobal, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/global",
	}, &out)
	if err != nil {
		return 0, err
	}

	dom, ok := out.Data.MarketCapPercentage[symbol(c.primary)]
	if !ok {
		return 0, fmt.Errorf("dominance for %s missing from global response", c.primary)
	}
	return dom, nil
}

// RelativeRatio returns the secondary asset priced in the primary asset.
func (c *Client) RelativeRatio(ctx context.Context) (float64, error) {
	vs := symbol(c.primary)
	var out map[string]map[string]float64
	err := c.fetcher.Fetch(ctx, models.SourceRatio, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {c.secondary},
			"vs_currencies": {vs},
		},
	}, &out)
	if err != nil {
		return 0, err
	}

	ratio, ok := out[c.secondary][vs]
	if !ok {
		return 0, fmt.Errorf("ratio %s/%s missing from price response", c.secondary, c.primary)
	}
	return ratio, nil
}

// SpotPricesUSD returns the latest USD price per asset id. Ids absent from
// the response are simply absent from the result.
func (c *Client) SpotPricesUSD(ctx context.Context, ids []string) (map[string]float64, error) {
	var out map[string]map[string]float64
	err := c.fetcher.Fetch(ctx, models.SourcePrices, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {strings.Join(ids, ",")},
			"vs_currencies": {"usd"},
		},
	}, &out)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(ids))
	for _, id := range ids {
		if usd, ok := out[id]["usd"]; ok {
			prices[id] = usd
		}
	}
	return prices, nil
}

type marketRow struct {
	MarketCapRank int      `json:"market_cap_rank"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  float64  `json:"current_price"`
	MarketCap     float64  `json:"market_cap"`
	Change24h     *float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d      *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d     *float64 `json:"price_change_percentage_30d_in_currency"`
}

// TopMarkets returns the top-n assets by market cap excluding the primary
// and secondary assets, with 24h/7d/30d momentum.
func (c *Client) TopMarkets(ctx context.Context, n int) ([]models.AltQuote, error) {
	// Ask for two extra rows so the excluded majors do not shrink the scan.
	var rows []marketRow
	err := c.fetcher.Fetch(ctx, models.SourceMarkets, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/coins/markets",
		QueryParams: map[string][]string{
			"vs_currency":             {"usd"},
			"order":                   {"market_cap_desc"},
			"per_page":                {strconv.Itoa(n + 2)},
			"page":                    {"1"},
			"sparkline":               {"false"},
			"price_change_percentage": {"24h,7d,30d"},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}

	excluded := map[string]bool{
		symbol(c.primary):   true,
		symbol(c.secondary): true,
	}

	quotes := make([]models.AltQuote, 0, n)
	for _, row := range rows {
		if excluded[strings.ToLower(row.Symbol)] {
			continue
		}
		quotes = append(quotes, models.AltQuote{
			Rank:         row.MarketCapRank,
			Symbol:       strings.ToUpper(row.Symbol),
			Name:         row.Name,
			PriceUSD:     row.CurrentPrice,
			Change24h:    row.Change24h,
			Change7d:     row.Change7d,
			Change30d:    row.Change30d,
			MarketCapUSD: row.MarketCap,
		})
		if len(quotes) == n {
			break
		}
	}
	return quotes, nil
}
