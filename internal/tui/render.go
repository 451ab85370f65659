package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/deepgram/chatdesk/internal/widget"
)

func renderItems(items []widget.Item, width int) string {
	wrap := contentStyle.Width(max(20, width-2))

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}

		if item.Typing {
			b.WriteString(typingStyle.Render("● ● ●"))
			b.WriteString("\n")
			continue
		}

		switch item.Turn.Role {
		case widget.RoleUser:
			b.WriteString(userRoleStyle.Render("you"))
		default:
			b.WriteString(assistantRoleStyle.Render("assistant"))
		}
		b.WriteString("\n")
		// escape sequences in message text are stripped so the terminal never interprets them
		b.WriteString(wrap.Render(ansi.Strip(item.Turn.Content)))
		b.WriteString("\n")
	}
	return b.String()
}
