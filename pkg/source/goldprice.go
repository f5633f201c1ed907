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

// GoldPriceSource fetches the XAU/USD spot price from goldprice.org
// (free, no API key).
type GoldPriceSource struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

type goldPriceResponse struct {
	Timestamp int64 `json:"ts"`
	Items     []struct {
		Currency string  `json:"curr"`
		XAUPrice float64 `json:"xauPrice"`
	} `json:"items"`
}

var _ reconcile.Source = (*GoldPriceSource)(nil)

// NewGoldPriceSourceFromConfig creates a new GoldPriceSource from config.
func NewGoldPriceSourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	return &GoldPriceSource{
		name:    "goldprice",
		baseURL: getString(config, "base_url", "https://data-asg.goldprice.org"),
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *GoldPriceSource) Name() string {
	return s.name
}

// Fetch performs a single request against goldprice.org.
func (s *GoldPriceSource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+"/dbXRates/USD", nil)
	if err != nil {
		return reconcile.Quote{}, err
	}

	var data goldPriceResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(data.Items) == 0 || data.Items[0].XAUPrice == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: goldprice", ErrMissingPrice)
	}

	observed := time.Now().UTC()
	if data.Timestamp > 0 {
		// ts is in milliseconds
		observed = time.UnixMilli(data.Timestamp).UTC()
	}

	s.logger.Debug("Fetched quote", "source", s.name, "price", data.Items[0].XAUPrice)
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      decimal.NewFromFloat(data.Items[0].XAUPrice),
		ObservedAt: observed,
		Raw:        body,
	}, nil
}
