package yahoo

// Snapshot is the normalized fast quote for a symbol. Nil fields mean the
// upstream omitted them (common outside market hours and for thin asset
// classes); callers fall through to the next resolution strategy.
type Snapshot struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	LastPrice     *float64 `json:"last_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Open          *float64 `json:"open,omitempty"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
}

// Complete reports whether the snapshot carries both fields needed for
// change calculation.
func (s *Snapshot) Complete() bool {
	return s != nil && s.LastPrice != nil && s.PreviousClose != nil
}

// BatchQuote carries the last two session closes for a symbol, used by the
// top-movers scan.
type BatchQuote struct {
	Symbol   string  `json:"symbol"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}
