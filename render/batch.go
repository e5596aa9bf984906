package render

import (
	"fmt"
	"strings"

	"flowtop/model"
)

// FrameRenderer draws one ranked frame for a session.
type FrameRenderer interface {
	RenderFrame(info HeaderInfo, groups []model.Group, sess *model.Session) string
}

// Batch renders append-only plain-text frames for pipes, logs and cron.
// Frames carry no escape sequences and never clear the screen; the layout
// is fixed regardless of terminal width, so identical input renders
// byte-identical output.
type Batch struct{}

const ruleWidth = 120

var rule = strings.Repeat("-", ruleWidth)

// RenderFrame renders the header block and the ranked rows, followed by a
// blank line separating it from the next frame.
func (Batch) RenderFrame(info HeaderInfo, groups []model.Group, sess *model.Session) string {
	var sb strings.Builder
	writeHeader(&sb, info, sess)
	if len(groups) == 0 {
		sb.WriteString(EmptyNotice + "\n")
	}
	for _, g := range groups {
		sb.WriteString(FormatRow(g, sess.Metric, sess.Mode) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// RenderUnavailable renders a frame for a failed fetch. The previous
// counters are untouched, so it states the failure instead of fabricating
// an empty table.
func (Batch) RenderUnavailable(info HeaderInfo, sess *model.Session, err error) string {
	var sb strings.Builder
	writeHeader(&sb, info, sess)
	fmt.Fprintf(&sb, " (no data: %v)\n\n", err)
	return sb.String()
}

func writeHeader(sb *strings.Builder, info HeaderInfo, sess *model.Session) {
	sb.WriteString(rule + "\n")
	for _, line := range HeaderLines(info, sess) {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(rule + "\n")
	sb.WriteString(ColumnHeader(sess.Metric) + "\n")
	sb.WriteString(rule + "\n")
}
