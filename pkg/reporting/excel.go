package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mtxlabs/mtx-trading-bot/internal/volatility"
)

// WriteVolatilityXLSX writes the ranked volatility metrics to an Excel
// workbook at path, creating parent directories as needed.
func WriteVolatilityXLSX(ranked []volatility.Metrics, selected []string, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const sheet = "Volatility Ranking"
	fx.SetSheetName(fx.GetSheetName(0), sheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return err
	}

	numberStyle, err := fx.NewStyle(&excelize.Style{
		NumFmt: 2, // 0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Symbol", "Price", "ATR", "ATR %", "Volatility %", "Range %", "Score", "Selected"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		fx.SetCellValue(sheet, cell, header)
		fx.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, m := range ranked {
		row := i + 2
		selectedMark := ""
		if chosen[m.Symbol] {
			selectedMark = "YES"
		}
		values := []interface{}{
			i + 1,
			m.Symbol,
			m.CurrentPrice,
			m.ATR,
			m.ATRPercentage,
			m.Volatility,
			m.PriceRangePct,
			m.Score,
			selectedMark,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			fx.SetCellValue(sheet, cell, v)
		}
		first, _ := excelize.CoordinatesToCellName(3, row)
		last, _ := excelize.CoordinatesToCellName(8, row)
		fx.SetCellStyle(sheet, first, last, numberStyle)
	}

	fx.SetColWidth(sheet, "A", "I", 14)
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", len(ranked)+3),
		"Generated "+time.Now().Format("2006-01-02 15:04:05"))

	return fx.SaveAs(path)
}
