package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/upload"
)

// RenderAlert frames an upload alert in a box colored by its type.
func RenderAlert(alert upload.Alert) string {
	color, marker := SuccessColor, SuccessMarker
	if alert.Type == upload.AlertError {
		color, marker = ErrorColor, FailureMarker
	}
	lines := make([]string, 0, len(alert.Messages))
	for i, msg := range alert.Messages {
		if i == 0 {
			msg = marker + " " + msg
		}
		lines = append(lines, msg)
	}
	return AlertBoxStyle.BorderForeground(color).Render(strings.Join(lines, "\n"))
}

// RenderAlerts stacks alerts vertically.
func RenderAlerts(alerts []upload.Alert) string {
	blocks := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		blocks = append(blocks, RenderAlert(alert))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// RenderOutcome summarises a submission outcome in one or two lines.
func RenderOutcome(outcome pipeline.Outcome) string {
	switch outcome.State {
	case pipeline.StateSuccess:
		line := SuccessTitleStyle.Render(SuccessMarker + " submitted")
		if outcome.Message != "" {
			line += "\n" + MessageStyle.Render(outcome.Message)
		}
		return line
	case pipeline.StateBusinessError, pipeline.StateTransportError:
		line := ErrorTitleStyle.Render(FailureMarker + " " + outcome.State.String())
		if outcome.Message != "" {
			line += "\n" + MessageStyle.Render(outcome.Message)
		}
		return line
	}
	return MutedStyle.Render(outcome.State.String())
}

// Notifier prints notifications to a writer.
type Notifier struct {
	Out io.Writer
}

func (n Notifier) Error(message string) {
	fmt.Fprintln(n.Out, ErrorTitleStyle.Render(FailureMarker)+" "+message)
}

func (n Notifier) Success(message string) {
	fmt.Fprintln(n.Out, SuccessTitleStyle.Render(SuccessMarker)+" "+message)
}

var _ pipeline.Notifier = Notifier{}
