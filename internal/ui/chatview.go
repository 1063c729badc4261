// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kilokokua-tui/internal/chat"
	"github.com/jeranaias/kilokokua-tui/internal/ui/styles"
)

// chatView renders the transcript and the message input.
type chatView struct {
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// markdown renders assistant replies; nil when disabled in config.
	markdown *glamour.TermRenderer

	width   int
	height  int
	sending bool
}

func newChatView(renderMarkdown bool) chatView {
	ti := textinput.New()
	ti.Placeholder = "Type your message here..."
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Teal)

	cv := chatView{
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  sp,
	}
	if renderMarkdown {
		// Renderer failure just means plain text replies.
		if r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.GlamourStyle()),
			glamour.WithWordWrap(80),
		); err == nil {
			cv.markdown = r
		}
	}
	return cv
}

func (cv *chatView) setSize(width, height int) {
	cv.width = width
	cv.height = height
	// Input box with border takes three rows.
	cv.viewport.Width = width
	cv.viewport.Height = height - 3
	cv.input.Width = width - 6
	if cv.markdown != nil && width > 8 {
		if r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.GlamourStyle()),
			glamour.WithWordWrap(width-4),
		); err == nil {
			cv.markdown = r
		}
	}
}

// refresh rebuilds the viewport content from the transcript and pins the
// view to the newest message.
func (cv *chatView) refresh(msgs []chat.Message, sending bool) {
	cv.sending = sending
	cv.viewport.SetContent(cv.renderTranscript(msgs))
	cv.viewport.GotoBottom()
}

func (cv *chatView) renderTranscript(msgs []chat.Message) string {
	if len(msgs) == 0 {
		return cv.renderWelcome()
	}

	var sb strings.Builder
	for _, msg := range msgs {
		switch msg.Origin {
		case chat.OriginUser:
			sb.WriteString(styles.UserLabel.Render("You"))
			if msg.Pending {
				sb.WriteString(styles.RenderMuted(" (sending)"))
			}
			sb.WriteString("\n")
			sb.WriteString(msg.Content)
		case chat.OriginBot:
			sb.WriteString(styles.AssistantLabel.Render("KiloKōkua"))
			sb.WriteString("\n")
			sb.WriteString(cv.renderReply(msg.Content))
		case chat.OriginInfo:
			sb.WriteString(styles.InfoText.Render(msg.Content))
		}
		sb.WriteString("\n\n")
	}
	if cv.sending {
		sb.WriteString(cv.spinner.View())
		sb.WriteString(styles.RenderMuted(" thinking..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (cv *chatView) renderReply(content string) string {
	if cv.markdown == nil {
		return content
	}
	rendered, err := cv.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (cv *chatView) renderWelcome() string {
	var sb strings.Builder
	sb.WriteString(styles.AssistantLabel.Render("KiloKōkua"))
	sb.WriteString("\n")
	sb.WriteString(cv.renderReply(chat.Greeting))
	sb.WriteString("\n\n")
	sb.WriteString(styles.RenderMuted("Try asking:"))
	sb.WriteString("\n")
	for _, s := range chat.Suggestions {
		sb.WriteString(styles.RenderMuted("  - " + s))
		sb.WriteString("\n")
	}
	return sb.String()
}

// update forwards messages to the nested components.
func (cv *chatView) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	cv.viewport, cmd = cv.viewport.Update(msg)
	cmds = append(cmds, cmd)
	cv.input, cmd = cv.input.Update(msg)
	cmds = append(cmds, cmd)
	if cv.sending {
		cv.spinner, cmd = cv.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// takeInput returns the trimmed input text and clears the field.
func (cv *chatView) takeInput() string {
	text := strings.TrimSpace(cv.input.Value())
	cv.input.Reset()
	return text
}

func (cv *chatView) view(focused bool) string {
	inputStyle := styles.InputBorder
	if focused {
		inputStyle = styles.InputFocused
	}
	field := cv.input.View()
	if cv.sending {
		// One message at a time; the input comes back with the reply.
		field = styles.RenderMuted("(waiting for reply...)")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		cv.viewport.View(),
		inputStyle.Width(cv.width-2).Render(field),
	)
}
