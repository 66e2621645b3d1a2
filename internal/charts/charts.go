package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"catatan/internal/core"
)

// RenderMonthSummary renders a bar chart of per-category spend for the month.
// Returns nil bytes when the summary has no data.
func RenderMonthSummary(sum core.MonthSummary) ([]byte, error) {
	if len(sum.ByCategory) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(sum.ByCategory))
	for _, ca := range sum.ByCategory {
		bars = append(bars, chart.Value{
			Label: shortLabel(ca.Name),
			Value: float64(ca.Amount.Rupiah),
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(180),
				FontSize:    10,
				FontColor:   chart.ColorBlack,
			},
		})
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Pengeluaran %s %d", sum.Month.String(), sum.Year),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    900,
		Height:   500,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("Rp %.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  10,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render month summary chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// shortLabel keeps bar labels readable: "Entertainment & Recreation" -> "Entertainment".
func shortLabel(name string) string {
	for i, r := range name {
		if r == '&' {
			for i > 0 && name[i-1] == ' ' {
				i--
			}
			return name[:i]
		}
	}
	return name
}
