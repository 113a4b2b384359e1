package services

import (
	"context"

	"github.com/xuri/excelize/v2"
)

const portfolioSheet = "Portfolio"

var portfolioHeader = []interface{}{"Position", "Ticker", "Name", "Shares", "Price", "Value"}

// ExportPortfolioXLSX writes the holder's portfolio to a single-sheet
// workbook. Value is shares times the catalog price.
func (s *PositionService) ExportPortfolioXLSX(ctx context.Context, email string) (*excelize.File, error) {
	positions, err := s.RetrievePortfolio(ctx, email)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(portfolioSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(portfolioSheet, "A1", &portfolioHeader); err != nil {
		return nil, err
	}

	for i, p := range positions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.ID, "", "", p.Shares.InexactFloat64(), 0.0, 0.0}
		if p.Instrument != nil {
			row[1] = p.Instrument.Ticker
			row[2] = p.Instrument.Name
			row[4] = p.Instrument.Price.InexactFloat64()
			row[5] = p.Shares.Mul(p.Instrument.Price).InexactFloat64()
		}
		if err := f.SetSheetRow(portfolioSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
