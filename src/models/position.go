package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position links one Holder to one Instrument. At most one exists per pair.
//
// Holder and Instrument are only populated on reads that load them, or by
// callers handing in a candidate object graph. Writes never persist them.
type Position struct {
	ID           int             `db:"id" json:"id"`
	HolderID     int             `db:"holder_id" json:"holderId"`
	InstrumentID int             `db:"instrument_id" json:"instrumentId"`
	Shares       decimal.Decimal `db:"shares" json:"shares"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`

	Holder     *Holder     `db:"-" json:"holder,omitempty"`
	Instrument *Instrument `db:"-" json:"instrument,omitempty"`
}
