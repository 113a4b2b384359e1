package schemas

import (
	"investmentapp/src/models"

	"github.com/shopspring/decimal"
)

type PositionRequest struct {
	Shares decimal.Decimal `json:"shares"`
}

type PositionResponse struct {
	ID     int             `json:"id"`
	Ticker string          `json:"ticker"`
	Shares decimal.Decimal `json:"shares"`
}

type PortfolioEntry struct {
	ID     int             `json:"id"`
	Ticker string          `json:"ticker"`
	Name   string          `json:"name"`
	Shares decimal.Decimal `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

type PortfolioResponse struct {
	Email     string           `json:"email"`
	Positions []PortfolioEntry `json:"positions"`
	Total     decimal.Decimal  `json:"total"`
}

// NewPortfolioResponse values every position at the catalog price.
func NewPortfolioResponse(email string, positions []models.Position) PortfolioResponse {
	res := PortfolioResponse{Email: email, Positions: make([]PortfolioEntry, 0, len(positions)), Total: decimal.Zero}
	for _, p := range positions {
		entry := PortfolioEntry{ID: p.ID, Shares: p.Shares, Price: decimal.Zero, Value: decimal.Zero}
		if p.Instrument != nil {
			entry.Ticker = p.Instrument.Ticker
			entry.Name = p.Instrument.Name
			entry.Price = p.Instrument.Price
			entry.Value = p.Shares.Mul(p.Instrument.Price)
		}
		res.Total = res.Total.Add(entry.Value)
		res.Positions = append(res.Positions, entry)
	}
	return res
}
