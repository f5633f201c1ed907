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

// ExchangeRateHostSource converts one troy ounce of gold (XAU) to USD
// via exchangerate.host (free, no API key).
type ExchangeRateHostSource struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

type exchangeRateHostResponse struct {
	Success bool    `json:"success"`
	Result  float64 `json:"result"`
}

var _ reconcile.Source = (*ExchangeRateHostSource)(nil)

// NewExchangeRateHostSourceFromConfig creates a new ExchangeRateHostSource from config.
func NewExchangeRateHostSourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	return &ExchangeRateHostSource{
		name:    "exchangeratehost",
		baseURL: getString(config, "base_url", "https://api.exchangerate.host"),
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *ExchangeRateHostSource) Name() string {
	return s.name
}

// Fetch performs a single request against exchangerate.host.
func (s *ExchangeRateHostSource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+"/convert?from=XAU&to=USD", nil)
	if err != nil {
		return reconcile.Quote{}, err
	}

	var data exchangeRateHostResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if data.Result == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: exchangeratehost", ErrMissingPrice)
	}

	s.logger.Debug("Fetched quote", "source", s.name, "price", data.Result)
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      decimal.NewFromFloat(data.Result),
		ObservedAt: time.Now().UTC(),
		Raw:        body,
	}, nil
}
