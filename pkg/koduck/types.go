package koduck

import "time"

// Field names follow the normalized camelCase payload keys.

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email,omitempty"`
}

// TokenResponse is returned by login and token refresh.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"` // seconds
	User         *UserInfo `json:"user,omitempty"`
}

// UserInfo is the identity attached to a session.
type UserInfo struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// WatchlistItem is one watched symbol. Price fields are nil when the
// backend has no quote for the symbol.
type WatchlistItem struct {
	ID            int64    `json:"id"`
	Market        string   `json:"market"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Note          *string  `json:"note"`
	SortOrder     int      `json:"sortOrder"`
	CreatedAt     string   `json:"createdAt"`
	Price         *float64 `json:"price,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
}

// AddWatchlistRequest is the body of an add-to-watchlist call.
type AddWatchlistRequest struct {
	Market string `json:"market"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
}

// KlineBar is one candlestick.
type KlineBar struct {
	Timestamp int64   `json:"timestamp"` // Unix ms
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount,omitempty"`
}

// Time returns the bar's timestamp.
func (b KlineBar) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}

// KlineQuery selects candlesticks for one symbol.
type KlineQuery struct {
	Market     string
	Symbol     string
	Timeframe  string // e.g. "1D", "1W", "60m"
	Limit      int    // zero lets the server choose
	BeforeTime int64  // Unix ms; zero means latest
}

// PriceQuote is the latest traded price of a symbol.
type PriceQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// SearchResult is one stock matched by a keyword search.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// PortfolioItem is one held position.
type PortfolioItem struct {
	ID           int64   `json:"id"`
	Market       string  `json:"market"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avgCost"`
	CurrentPrice float64 `json:"currentPrice"`
	MarketValue  float64 `json:"marketValue"`
	Pnl          float64 `json:"pnl"`
	PnlPercent   float64 `json:"pnlPercent"`
}

// PortfolioSummary aggregates all positions.
type PortfolioSummary struct {
	TotalCost        float64 `json:"totalCost"`
	TotalMarketValue float64 `json:"totalMarketValue"`
	TotalPnl         float64 `json:"totalPnl"`
	TotalPnlPercent  float64 `json:"totalPnlPercent"`
	DailyPnl         float64 `json:"dailyPnl"`
	DailyPnlPercent  float64 `json:"dailyPnlPercent"`
}

// Trade sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeRecord is one executed trade.
type TradeRecord struct {
	ID        int64   `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Market    string  `json:"market"`
	Type      string  `json:"type"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	TradeTime string  `json:"tradeTime"`
}

// AddTradeRequest is the body of an add-trade call.
type AddTradeRequest struct {
	Market    string     `json:"market"`
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Quantity  float64    `json:"quantity"`
	Price     float64    `json:"price"`
	TradeTime *time.Time `json:"tradeTime,omitempty"`
}

// UserDetail is the full profile of the current user.
type UserDetail struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Nickname  string  `json:"nickname"`
	Avatar    *string `json:"avatar"`
	Phone     *string `json:"phone"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// UpdateProfileRequest is the body of a profile update. Empty fields are
// left unchanged.
type UpdateProfileRequest struct {
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
