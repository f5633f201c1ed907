package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// YahooSource fetches the front-month gold futures quote (GC=F) from
// Yahoo Finance. Futures pricing tracks spot closely enough to serve as
// a fallback source.
type YahooSource struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

type yahooResponse struct {
	QuoteResponse struct {
		Result []struct {
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			RegularMarketTime  int64   `json:"regularMarketTime"`
			Symbol             string  `json:"symbol"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

var _ reconcile.Source = (*YahooSource)(nil)

// NewYahooSourceFromConfig creates a new YahooSource from config.
func NewYahooSourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	return &YahooSource{
		name:    "yahoo",
		baseURL: getString(config, "base_url", "https://query1.finance.yahoo.com"),
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *YahooSource) Name() string {
	return s.name
}

// Fetch performs a single request against Yahoo Finance.
func (s *YahooSource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+"/v7/finance/quote?symbols=GC=F", nil)
	if err != nil {
		return reconcile.Quote{}, err
	}

	var data yahooResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(data.QuoteResponse.Result) == 0 || data.QuoteResponse.Result[0].RegularMarketPrice == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: yahoo", ErrMissingPrice)
	}

	quote := data.QuoteResponse.Result[0]
	observed := time.Now().UTC()
	if quote.RegularMarketTime > 0 {
		observed = time.Unix(quote.RegularMarketTime, 0).UTC()
	}

	s.logger.Debug("Fetched quote", "source", s.name, "price", quote.RegularMarketPrice)
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      decimal.NewFromFloat(quote.RegularMarketPrice),
		ObservedAt: observed,
		Raw:        body,
	}, nil
}
