package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// MetalsAPISource fetches XAU rates from metals-api.com. The API quotes
// XAU per USD, so the USD price of one ounce is the reciprocal.
type MetalsAPISource struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logging.Logger
}

type metalsAPIResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
	Error     struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

var _ reconcile.Source = (*MetalsAPISource)(nil)

// NewMetalsAPISourceFromConfig creates a new MetalsAPISource from config.
func NewMetalsAPISourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	apiKey := getString(config, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: metalsapi", ErrAPIKeyRequired)
	}

	return &MetalsAPISource{
		name:    "metalsapi",
		baseURL: getString(config, "base_url", "https://metals-api.com"),
		apiKey:  apiKey,
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *MetalsAPISource) Name() string {
	return s.name
}

// Fetch performs a single request against metals-api.com.
func (s *MetalsAPISource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/latest?access_key=%s&base=USD&symbols=XAU",
		s.baseURL, url.QueryEscape(s.apiKey))

	body, err := fetchJSON(ctx, s.client, endpoint, nil)
	if err != nil {
		return reconcile.Quote{}, err
	}

	var data metalsAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !data.Success {
		return reconcile.Quote{}, fmt.Errorf("%w: metalsapi code %d: %s", ErrAPIError, data.Error.Code, data.Error.Info)
	}

	rate, ok := data.Rates["XAU"]
	if !ok || rate == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: metalsapi", ErrMissingPrice)
	}

	observed := time.Now().UTC()
	if data.Timestamp > 0 {
		observed = time.Unix(data.Timestamp, 0).UTC()
	}

	// Rate is XAU per USD; invert for USD per ounce.
	price := decimal.NewFromInt(1).Div(decimal.NewFromFloat(rate))

	s.logger.Debug("Fetched quote", "source", s.name, "price", price.String())
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      price,
		ObservedAt: observed,
		Raw:        body,
	}, nil
}
