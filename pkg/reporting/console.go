package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mtxlabs/mtx-trading-bot/internal/volatility"
)

// PrintVolatilityRanking renders the ranked volatility metrics as a console
// table, marking the symbols that passed selection.
func PrintVolatilityRanking(ranked []volatility.Metrics, selected []string) {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("VOLATILITY RANKING")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"#", "Symbol", "Price", "ATR %", "Volatility", "Score", "Selected"})
	for i, m := range ranked {
		mark := ""
		if chosen[m.Symbol] {
			mark = "✅"
		}
		t.AppendRow(table.Row{
			i + 1,
			m.Symbol,
			fmt.Sprintf("%.4f", m.CurrentPrice),
			fmt.Sprintf("%.2f%%", m.ATRPercentage),
			fmt.Sprintf("%.2f%%", m.Volatility),
			fmt.Sprintf("%.2f", m.Score),
			mark,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignCenter},
	})

	t.Render()
	fmt.Println()
}

// PrintStartupInfo renders a startup banner table with the bot's key
// settings.
func PrintStartupInfo(exchange, environment, strategy, interval string, symbols []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BOT INITIALIZATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🏪 Exchange", exchange},
		{"🔧 Environment", environment},
		{"🎯 Strategy", strategy},
		{"⏰ Interval", interval},
		{"📊 Symbols", fmt.Sprintf("%d selected", len(symbols))},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
