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

// MetalsLiveSource fetches the gold spot price from api.metals.live
// (free, no API key). The payload is an array of spot entries.
type MetalsLiveSource struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

type metalsLiveItem struct {
	Gold      float64 `json:"gold"`
	Timestamp int64   `json:"timestamp"`
}

var _ reconcile.Source = (*MetalsLiveSource)(nil)

// NewMetalsLiveSourceFromConfig creates a new MetalsLiveSource from config.
func NewMetalsLiveSourceFromConfig(config map[string]interface{}) (reconcile.Source, error) {
	return &MetalsLiveSource{
		name:    "metalslive",
		baseURL: getString(config, "base_url", "https://api.metals.live"),
		client:  newHTTPClient(getTimeout(config)),
		logger:  GetLoggerFromConfig(config),
	}, nil
}

// Name returns the source id.
func (s *MetalsLiveSource) Name() string {
	return s.name
}

// Fetch performs a single request against metals.live.
func (s *MetalsLiveSource) Fetch(ctx context.Context) (reconcile.Quote, error) {
	body, err := fetchJSON(ctx, s.client, s.baseURL+"/v1/spot/gold", nil)
	if err != nil {
		return reconcile.Quote{}, err
	}

	var items []metalsLiveItem
	if err := json.Unmarshal(body, &items); err != nil {
		return reconcile.Quote{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(items) == 0 || items[0].Gold == 0 {
		return reconcile.Quote{}, fmt.Errorf("%w: metalslive", ErrMissingPrice)
	}

	observed := time.Now().UTC()
	if items[0].Timestamp > 0 {
		observed = time.UnixMilli(items[0].Timestamp).UTC()
	}

	s.logger.Debug("Fetched quote", "source", s.name, "price", items[0].Gold)
	return reconcile.Quote{
		SourceID:   s.name,
		Value:      decimal.NewFromFloat(items[0].Gold),
		ObservedAt: observed,
		Raw:        body,
	}, nil
}
