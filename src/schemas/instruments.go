package schemas

import (
	"investmentapp/src/models"

	"github.com/shopspring/decimal"
)

type InstrumentRequest struct {
	Ticker      string          `json:"ticker"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

func (i InstrumentRequest) ToModel() models.Instrument {
	return models.Instrument{Ticker: i.Ticker, Name: i.Name, Price: i.Price, Description: i.Description}
}
