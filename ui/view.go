package ui

import (
	"strings"
	"time"

	"flowtop/engine"
	"flowtop/model"
	"flowtop/render"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.frame == nil && m.notice == "" {
		return "Collecting first sample..."
	}

	at := time.Now()
	if m.frame != nil {
		at = m.frame.At
	}
	in, out := m.eng.Totals()
	info := render.HeaderInfo{
		At:       at,
		CmdEcho:  m.eng.Describe(),
		TotalIn:  in,
		TotalOut: out,
		PeakKBs:  m.eng.History.PeakKBs(),
	}

	var b strings.Builder
	rule := dimStyle.Render(strings.Repeat("-", m.ruleWidth()))

	b.WriteString(rule + "\n")
	for i, line := range render.HeaderLines(info, m.sess) {
		switch i {
		case 0:
			b.WriteString(titleStyle.Render(line))
		default:
			b.WriteString(helpStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")

	if m.notice != "" {
		b.WriteString(errStyle.Render(" "+m.notice) + "\n")
	}

	b.WriteString(headerStyle.Render(render.ColumnHeader(m.sess.Metric)) + "\n")
	b.WriteString(rule + "\n")

	if m.frame == nil || len(m.frame.Groups) == 0 {
		b.WriteString(dimStyle.Render(render.EmptyNotice) + "\n")
	} else {
		for _, g := range engine.Rank(m.frame.Groups, m.sess.Sort, m.sess.Top) {
			row := render.FormatRow(g, m.sess.Metric, m.sess.Mode)
			if render.Hot(g, m.sess) {
				row = hotStyle.Render(row)
			}
			b.WriteString(row + "\n")
		}
	}

	if m.sess.State == model.StatePrompt {
		b.WriteString("\n" + m.input.View())
	}

	return bgStyle(m.bg).Render(b.String())
}

func (m Model) ruleWidth() int {
	w := m.width - 1
	if w < 20 {
		w = 20
	}
	if w > 160 {
		w = 160
	}
	return w
}
