package notifier

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sync"

	"SignalSentinel/internal/model"
)

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// PlainText strips the Telegram HTML markup from a formatted message.
func PlainText(s string) string {
	return html.UnescapeString(htmlTag.ReplaceAllString(s, ""))
}

// ConsoleSink prints reports instead of sending them. Used for dry runs.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s\n\n", PlainText(text))
	return err
}

func (c *ConsoleSink) Deliver(_ context.Context, r *model.SignalReport) error {
	return c.write(FormatSignalReport(r))
}

func (c *ConsoleSink) Notify(_ context.Context, text string) error {
	return c.write(text)
}

func (c *ConsoleSink) Alert(_ context.Context, text string) error {
	return c.write("ALERT " + text)
}
