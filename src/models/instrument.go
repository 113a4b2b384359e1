package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Instrument struct {
	ID          int             `db:"id" json:"id"`
	Ticker      string          `db:"ticker" json:"ticker"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}
