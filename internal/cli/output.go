package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ubigeo-api/internal/ubigeo"
)

var (
	// titleStyle：标题
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle：次要信息
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Width(8)

	levelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Width(10)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// printer：按 --json 开关输出 JSON 或样式化文本
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) emit(v any, text func()) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func (p printer) entityLine(e ubigeo.Entity) {
	line := codeStyle.Render(e.Code) + levelStyle.Render(e.Level.String()) + e.Name
	if len(e.AltNames) > 0 {
		line += " " + dimStyle.Render("("+strings.Join(e.AltNames, ", ")+")")
	}
	fmt.Fprintln(p.w, line)
}

func (p printer) entities(title string, es []ubigeo.Entity) error {
	return p.emit(es, func() {
		fmt.Fprintln(p.w, titleStyle.Render(title)+" "+dimStyle.Render(fmt.Sprintf("%d result(s)", len(es))))
		for _, e := range es {
			p.entityLine(e)
		}
	})
}

func (p printer) path(pt ubigeo.Path) error {
	return p.emit(pt, func() {
		var b strings.Builder
		b.WriteString(titleStyle.Render(pt.Code()) + "\n")
		for i, name := range pt.Names() {
			b.WriteString(strings.Repeat("  ", i) + name)
			if i < len(pt.Names())-1 {
				b.WriteString("\n")
			}
		}
		fmt.Fprintln(p.w, boxStyle.Render(b.String()))
	})
}
