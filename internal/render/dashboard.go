package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fogleman/gg"

	"trade-journal/internal/domain"
)

const (
	dashboardWidth  = 1200
	dashboardHeight = 750

	colorBackground = "#0b1120"
	colorCard       = "#0f172a"
	colorWhite      = "#ffffff"
	colorGreen      = "#22c55e"
	colorRed        = "#ef4444"
	colorCyan       = "#22d3ee"
	colorMuted      = "#94a3b8"
)

// totalTone colors the total RR by sign.
func totalTone(totalRR float64) string {
	switch {
	case totalRR > 0:
		return colorGreen
	case totalRR < 0:
		return colorRed
	default:
		return colorWhite
	}
}

// streakTone colors streak panels by dominance.
func streakTone(d domain.Dominance) string {
	switch d {
	case domain.WinDominant:
		return colorGreen
	case domain.LossDominant:
		return colorRed
	default:
		return colorWhite
	}
}

// Dashboard renders the performance dashboard as a 1200x750 PNG.
func (r *Renderer) Dashboard(m domain.AggregateMetrics) ([]byte, error) {
	dc := gg.NewContext(dashboardWidth, dashboardHeight)

	dc.SetHexColor(colorBackground)
	dc.Clear()

	rrColor := totalTone(m.TotalRR)
	streakColor := streakTone(m.Dominance)

	dc.SetHexColor(colorWhite)
	dc.SetFontFace(r.face(40))
	dc.DrawString("TRADING PERFORMANCE DASHBOARD", 250, 70)

	// headline cards
	drawCard(dc, 100, 130, 300, 180, colorWhite)
	drawCard(dc, 450, 130, 300, 180, colorCyan)
	drawCard(dc, 800, 130, 300, 180, rrColor)

	dc.SetFontFace(r.face(20))
	dc.SetHexColor(colorMuted)
	dc.DrawString("TOTAL TRADES", 180, 170)
	dc.DrawString("WIN RATE", 540, 170)
	dc.DrawString("TOTAL RR", 900, 170)

	dc.SetFontFace(r.face(42))
	dc.SetHexColor(colorWhite)
	dc.DrawString(strconv.Itoa(m.Total), 220, 240)
	dc.SetHexColor(colorCyan)
	dc.DrawString(m.WinRateString()+"%", 540, 240)
	dc.SetHexColor(rrColor)
	dc.DrawString(m.TotalRRString()+" RR", 860, 240)

	// averages and streaks
	drawCard(dc, 100, 350, 450, 200, colorWhite)
	drawCard(dc, 650, 350, 450, 200, streakColor)

	dc.SetFontFace(r.face(22))
	dc.SetHexColor(colorMuted)
	dc.DrawString("AVERAGE PERFORMANCE", 200, 390)
	dc.DrawString("RECORD STREAKS", 780, 390)

	dc.SetFontFace(r.face(28))
	dc.SetHexColor(colorGreen)
	dc.DrawString(fmt.Sprintf("Avg Win: %s RR", m.AvgWinString()), 200, 440)
	dc.SetHexColor(colorRed)
	dc.DrawString(fmt.Sprintf("Avg Loss: %s RR", m.AvgLossString()), 200, 490)

	dc.SetHexColor(colorWhite)
	dc.DrawString(fmt.Sprintf("Highest Win: %d", m.LongestWinStreak), 780, 440)
	dc.DrawString(fmt.Sprintf("Highest Loss: %d", m.LongestLossStreak), 780, 490)

	dc.SetFontFace(r.face(18))
	dc.SetHexColor(colorMuted)
	dc.DrawString(fmt.Sprintf("Max Drawdown: %s RR", m.MaxDrawdownString()), 200, 530)

	// dominance banner
	drawCard(dc, 300, 600, 600, 120, streakColor)
	dc.SetFontFace(r.face(30))
	dc.SetHexColor(streakColor)
	dc.DrawStringAnchored(m.Dominance.Label(), 600, 660, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCard fills a panel and strokes a glowing border.
func drawCard(dc *gg.Context, x, y, w, h float64, border string) {
	dc.SetHexColor(colorCard)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	// glow: wide translucent strokes under the solid border
	cr, cg, cb := hexRGB(border)
	for i := 4; i >= 1; i-- {
		dc.SetRGBA(cr, cg, cb, 0.08*float64(5-i))
		dc.SetLineWidth(3 + float64(i)*4)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}

	dc.SetHexColor(border)
	dc.SetLineWidth(3)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}

// hexRGB parses #rrggbb into 0..1 components.
func hexRGB(hex string) (float64, float64, float64) {
	var r, g, b uint8
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return float64(r) / 255, float64(g) / 255, float64(b) / 255
}
