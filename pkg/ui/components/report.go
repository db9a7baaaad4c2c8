package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/swap-settler/business/settlement/domain"
)

// ReportComponent renders the quote transparency report.
type ReportComponent struct {
	report       *domain.Report
	buyAmount    string
	minBuyAmount string
}

// NewReportComponent creates an empty report panel.
func NewReportComponent() *ReportComponent {
	return &ReportComponent{}
}

// Update replaces the displayed report.
func (r *ReportComponent) Update(report domain.Report, buyAmount, minBuyAmount string) {
	r.report = &report
	r.buyAmount = buyAmount
	r.minBuyAmount = minBuyAmount
}

// View renders the report panel. Values are pre-computed by the domain.
func (r *ReportComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	if r.report == nil {
		return headerStyle.Render("QUOTE") + "\n\n" + dimStyle.Render("  Waiting for quote...")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("QUOTE"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  Buy amount:     %s\n", valueStyle.Render(r.buyAmount)))
	sb.WriteString(fmt.Sprintf("  Min buy amount: %s\n", dimStyle.Render(r.minBuyAmount)))

	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("  LIQUIDITY SOURCES"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 36)))
	sb.WriteString("\n")
	if len(r.report.Liquidity) == 0 {
		sb.WriteString(dimStyle.Render("  none reported"))
		sb.WriteString("\n")
	}
	for _, share := range r.report.Liquidity {
		sb.WriteString(fmt.Sprintf("  %-24s %9s\n", share.Source, share.Percent.StringFixed(2)+"%"))
	}

	if len(r.report.Taxes) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("  TOKEN TAXES"))
		sb.WriteString("\n")
		for _, leg := range r.report.Taxes {
			sb.WriteString(fmt.Sprintf("  %-12s buy %s  sell %s\n",
				leg.Leg,
				warnStyle.Render(leg.BuyTaxPercent.StringFixed(2)+"%"),
				warnStyle.Render(leg.SellTaxPercent.StringFixed(2)+"%"),
			))
		}
	}

	m := r.report.Monetization
	if m.AffiliateFeePercent != nil || m.TradeSurplus != "" {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("  MONETIZATION"))
		sb.WriteString("\n")
		if m.AffiliateFeePercent != nil {
			sb.WriteString(fmt.Sprintf("  Affiliate fee:  %s\n", m.AffiliateFeePercent.StringFixed(2)+"%"))
		}
		if m.TradeSurplus != "" {
			sb.WriteString(fmt.Sprintf("  Trade surplus:  %s\n", m.TradeSurplus))
		}
	}
	return sb.String()
}
