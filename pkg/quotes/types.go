package quotes

// ChainContract is one element of the options-chain snapshot array.
// Nested objects are pointers so a missing object can be told apart from zero values.
type ChainContract struct {
	Day               *Day             `json:"day"`
	Details           *Details         `json:"details"`
	Greeks            *Greeks          `json:"greeks"`
	ImpliedVolatility *float64         `json:"implied_volatility"`
	LastQuote         *LastQuote       `json:"last_quote"`
	LastTrade         *LastTrade       `json:"last_trade"`
	OpenInterest      float64          `json:"open_interest"`
	UnderlyingAsset   *UnderlyingAsset `json:"underlying_asset"`
}

type Day struct {
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"change_percent"`
	Close         *float64 `json:"close"`
	High          *float64 `json:"high"`
	LastUpdated   *int64   `json:"last_updated"`
	Low           *float64 `json:"low"`
	Open          *float64 `json:"open"`
	PreviousClose *float64 `json:"previous_close"`
	Volume        *float64 `json:"volume"`
	VWAP          *float64 `json:"vwap"`
}

type Details struct {
	ContractType      string  `json:"contract_type"` // "call" or "put"
	ExerciseStyle     string  `json:"exercise_style"`
	ExpirationDate    string  `json:"expiration_date"` // YYYY-MM-DD
	SharesPerContract int     `json:"shares_per_contract"`
	StrikePrice       float64 `json:"strike_price"`
	Ticker            string  `json:"ticker"` // e.g., "O:SPXW241018C05800000"
}

type Greeks struct {
	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Theta *float64 `json:"theta"`
	Vega  *float64 `json:"vega"`
}

type LastQuote struct {
	Ask         float64 `json:"ask"`
	AskSize     float64 `json:"ask_size"`
	AskExchange int     `json:"ask_exchange"`
	Bid         float64 `json:"bid"`
	BidSize     float64 `json:"bid_size"`
	BidExchange int     `json:"bid_exchange"`
	LastUpdated int64   `json:"last_updated"` // nanoseconds since epoch
	Midpoint    float64 `json:"midpoint"`
	Timeframe   string  `json:"timeframe"` // "REAL-TIME" or "DELAYED"
}

type LastTrade struct {
	SIPTimestamp *int64   `json:"sip_timestamp"` // nanoseconds since epoch
	Conditions   []int    `json:"conditions"`
	Price        *float64 `json:"price"`
	Size         *int64   `json:"size"`
	Exchange     *int     `json:"exchange"`
	Timeframe    string   `json:"timeframe"`
}

type UnderlyingAsset struct {
	LastUpdated int64   `json:"last_updated"`
	Value       float64 `json:"value"`
	Ticker      string  `json:"ticker"`
	Timeframe   string  `json:"timeframe"`
}
