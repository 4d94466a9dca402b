package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type DoctorRenderer struct {
	theme *Theme
}

func NewDoctorRenderer(theme *Theme) *DoctorRenderer {
	return &DoctorRenderer{theme: theme}
}

type DoctorReport struct {
	OverallOK bool
	Checks    []DoctorCheck
}

type DoctorCheck struct {
	Name     string
	OK       bool
	Detail   string
	Required bool
}

func (r *DoctorRenderer) Render(report DoctorReport) string {
	header := r.renderHeader(report.OverallOK)

	lines := make([]string, 0, len(report.Checks))
	for _, c := range report.Checks {
		lines = append(lines, r.renderCheck(c))
	}
	body := strings.Join(lines, "\n")
	box := r.theme.Box.Render(r.theme.BoxHeader.Render(fmt.Sprintf("%s Environment", r.theme.Highlight.Render(IconDesktop))) + "\n" + body)

	return lipgloss.JoinVertical(lipgloss.Left, header, "", box)
}

func (r *DoctorRenderer) renderHeader(ok bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	statusStyle := r.theme.SuccessStyle
	statusText := "OK"
	if !ok {
		statusStyle = r.theme.WarningStyle
		statusText = "Needs attention"
	}

	title := fmt.Sprintf("%s %s", iconStyle.Render(IconDoctor), r.theme.Title.Render("Doctor"))
	badge := r.theme.BadgeMuted.Render(statusStyle.Render(statusText))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge)
}

func (r *DoctorRenderer) renderCheck(c DoctorCheck) string {
	icon := IconCheck
	statusStyle := r.theme.SuccessStyle
	status := "OK"

	if !c.OK {
		if c.Required {
			icon = IconX
			statusStyle = r.theme.ErrorStyle
			status = "Missing"
		} else {
			icon = IconWarning
			statusStyle = r.theme.WarningStyle
			status = "Unavailable"
		}
	}

	name := r.theme.Normal.Render(c.Name)
	badge := r.theme.BadgeMuted.Render(statusStyle.Render(status))
	info := r.theme.Subtle.Render(c.Detail)

	return fmt.Sprintf("%s %s %s\n  %s", statusStyle.Render(icon), name, badge, info)
}
