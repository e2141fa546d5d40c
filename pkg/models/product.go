package models

// Product describes one dashboard instrument and how it is resolved.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameKr      string `json:"nameKr"`
	ChartSymbol string `json:"symbol"` // Yahoo chart symbol for history/candles
	Unit        string `json:"unit"`
	Category    string `json:"category"` // "currency", "commodity", "index"
	NeedsFX     bool   `json:"-"`        // price must be converted via USD/KRW
}

// Products is the fixed set of dashboard instruments, keyed by product id.
var Products = map[string]Product{
	"usd": {
		ID: "usd", Name: "USD/KRW", NameKr: "달러",
		ChartSymbol: "USDKRW=X", Unit: "원", Category: "currency",
	},
	"gold": {
		ID: "gold", Name: "Gold", NameKr: "금",
		ChartSymbol: "XAUUSD=X", Unit: "원/g", Category: "commodity",
		NeedsFX: true,
	},
	"sp500": {
		ID: "sp500", Name: "S&P 500", NameKr: "S&P 500",
		ChartSymbol: "SPY", Unit: "원", Category: "index",
		NeedsFX: true,
	},
	"kospi": {
		ID: "kospi", Name: "KOSPI", NameKr: "KOSPI 지수",
		ChartSymbol: "^KS11", Unit: "pt", Category: "index",
	},
	"nasdaq": {
		ID: "nasdaq", Name: "NASDAQ", NameKr: "나스닥 지수",
		ChartSymbol: "^IXIC", Unit: "pt", Category: "index",
	},
}

// ProductIDs lists the product ids in display order.
var ProductIDs = []string{"usd", "gold", "sp500", "kospi", "nasdaq"}

// ProductPayload is the composed per-product response served to the
// client and persisted under the product_<id> cache key.
type ProductPayload struct {
	Price         float64   `json:"price"`
	PreviousPrice *float64  `json:"previousPrice,omitempty"`
	ChangePercent float64   `json:"changePercent"`
	Source        string    `json:"source"`
	History       []float64 `json:"history"`
	Candles       []Candle  `json:"candles"`
}
