package services

import (
	"investmentapp/src/models"
	"investmentapp/src/utils"
)

// AuthorizeOwnership fails unless position belongs to holder. Both must be
// freshly resolved; holder comes from the authenticated email, never from an
// id the client sent.
func AuthorizeOwnership(holder *models.Holder, position *models.Position) error {
	if holder == nil || position == nil {
		return &utils.OwnershipError{}
	}
	if position.HolderID != holder.ID {
		return &utils.OwnershipError{HolderID: holder.ID, PositionID: position.ID}
	}
	return nil
}
