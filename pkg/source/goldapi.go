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

// GoldAPISource fetches the XAU/USD spot price from GoldAPI.io.
// Requires an API key (x-access-token header).
// https://www.goldapi.io/
type GoldAPISource struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logging.Logger
}

type goldAPIResponse struct {
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Metal     string  `json:"metal"`
	Currency  string  `json:"currency"`
}

var _ reconcile.Source = (*GoldAPISource)(nil)

// NewGoldAPISourceFromConfig creates a new GoldAPISource from config.
func NewGoldAPISourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	apiKey := getString(config, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: goldapi", ErrAPIKeyRequired)
	}

	return &GoldAPISource{
		name:    "goldapi",
		baseURL: getString(config, "base_url", "https://www.goldapi.io"),
		apiKey:  apiKey,
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *GoldAPISource) Name() string {
	return s.name
}

// Fetch performs a single request against GoldAPI.io.
func (s *GoldAPISource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+"/api/XAU/USD", map[string]string{
		"x-access-token": s.apiKey,
	})
	if err != nil {
		return reconcile.Quote{}, err
	}

	var data goldAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if data.Price == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: goldapi", ErrMissingPrice)
	}

	observed := time.Now().UTC()
	if data.Timestamp > 0 {
		observed = time.Unix(data.Timestamp, 0).UTC()
	}

	s.logger.Debug("Fetched quote", "source", s.name, "price", data.Price)
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      decimal.NewFromFloat(data.Price),
		ObservedAt: observed,
		Raw:        body,
	}, nil
}
