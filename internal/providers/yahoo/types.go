package yahoo

// --- Yahoo Finance v8 chart API response types ---

// chartResponse is the top-level envelope of /v8/finance/chart/{symbol}.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []quoteIndicators `json:"quote"`
	} `json:"indicators"`
}

// chartMeta carries the quote-level fields. RegularMarketChangePercent is
// a pointer so its absence can be told apart from a flat 0% day.
type chartMeta struct {
	Currency                   string   `json:"currency"`
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         float64  `json:"regularMarketPrice"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	ChartPreviousClose         float64  `json:"chartPreviousClose"`
	PreviousClose              float64  `json:"previousClose"`
}

// quoteIndicators holds the OHLC series. Yahoo emits null for bars with
// no trade data, hence the pointer elements.
type quoteIndicators struct {
	Open  []*float64 `json:"open"`
	High  []*float64 `json:"high"`
	Low   []*float64 `json:"low"`
	Close []*float64 `json:"close"`
}
