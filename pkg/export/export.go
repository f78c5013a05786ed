// Package export renders a conversation and its ordered messages into
// JSON, Markdown or a paginated PDF document.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatportal/pkg/models"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// ErrInvalidFormat is returned for an unrecognized format selector.
var ErrInvalidFormat = errors.New("invalid export format")

// Render serializes the conversation in the requested format, returning
// the body and its content type.
func Render(format string, c models.Conversation, msgs []models.Message) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(c, msgs)
	case FormatMarkdown:
		return renderMarkdown(c, msgs), "text/markdown; charset=utf-8", nil
	case FormatPDF:
		b, err := renderPDF(c, msgs)
		return b, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

func renderJSON(c models.Conversation, msgs []models.Message) ([]byte, string, error) {
	b, err := json.MarshalIndent(struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}{Conversation: c, Messages: msgs}, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return b, "application/json", nil
}

func renderMarkdown(c models.Conversation, msgs []models.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "**Started:** %s\n", c.StartTime.Format(time.RFC3339))
	if c.EndTime != nil {
		fmt.Fprintf(&b, "**Ended:** %s\n", c.EndTime.Format(time.RFC3339))
	}
	if c.Summary != "" {
		fmt.Fprintf(&b, "\n**Summary:** %s\n", c.Summary)
	}
	b.WriteString("\n---\n\n")

	for _, m := range msgs {
		fmt.Fprintf(&b, "### %s\n\n", roleHeading(m.Role))
		fmt.Fprintf(&b, "%s\n\n", m.Content)
		if m.Bookmarked {
			b.WriteString("*Bookmarked*\n\n")
		}
		if len(m.Reactions) > 0 {
			fmt.Fprintf(&b, "Reactions: %s\n\n", strings.Join(m.Reactions, " "))
		}
	}
	return []byte(b.String())
}

func roleHeading(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
