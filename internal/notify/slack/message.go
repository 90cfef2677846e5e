package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

// OpsEvent describes one operational occurrence worth a Slack ping.
type OpsEvent struct {
	Kind   string // e.g. "retention_sweep", "calendar_sync"
	Detail string // human-readable summary, e.g. "soft-deleted 12 days"
	Err    string // non-empty marks this as a failure notification
}

func opsEmoji(err string) string {
	if err != "" {
		return ":x:"
	}
	return ":white_check_mark:"
}

// BuildOpsMessage renders an OpsEvent as Block Kit blocks.
func BuildOpsMessage(evt OpsEvent) []goslack.Block {
	text := fmt.Sprintf("%s *%s*\n%s", opsEmoji(evt.Err), evt.Kind, evt.Detail)
	if evt.Err != "" {
		text += fmt.Sprintf("\n*Error:* %s", evt.Err)
	}
	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}
