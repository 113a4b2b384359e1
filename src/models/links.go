package models

// LinkSide names one of the two back-reference indexes.
type LinkSide string

const (
	HolderSide     LinkSide = "holder"
	InstrumentSide LinkSide = "instrument"
)

// Link is one entry of a back-reference index: OwnerID is a holder id on
// the holder side and an instrument id on the instrument side.
type Link struct {
	Side       LinkSide `json:"side"`
	OwnerID    int      `json:"ownerId"`
	PositionID int      `json:"positionId"`
}

// LinkDiscrepancy describes a back-reference that disagrees with the
// positions table. Missing links must be added, dangling ones removed.
type LinkDiscrepancy struct {
	Link
	Missing bool `json:"missing"`
}
