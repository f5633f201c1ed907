package source

func init() {
	// Register all gold price sources
	Register("goldapi", NewGoldAPISourceFromConfig)
	Register("goldprice", NewGoldPriceSourceFromConfig)
	Register("metalslive", NewMetalsLiveSourceFromConfig)
	Register("exchangeratehost", NewExchangeRateHostSourceFromConfig)
	Register("yahoo", NewYahooSourceFromConfig)
	Register("metalsapi", NewMetalsAPISourceFromConfig)
}
