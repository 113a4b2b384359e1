package schemas

import "investmentapp/src/models"

type AuditResponse struct {
	Repaired      bool                     `json:"repaired"`
	Discrepancies []models.LinkDiscrepancy `json:"discrepancies"`
}
