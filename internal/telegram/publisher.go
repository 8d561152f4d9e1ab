package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/litbot/internal/service"
	"github.com/cloo-solutions/litbot/internal/telemetry"
)

// ChannelPublisher posts rendered articles to the configured channel.
type ChannelPublisher struct {
	messenger Messenger
	channelID int64
}

func NewChannelPublisher(m Messenger, channelID int64) *ChannelPublisher {
	return &ChannelPublisher{messenger: m, channelID: channelID}
}

func (p *ChannelPublisher) Publish(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	id, err := p.messenger.SendHTML(p.channelID, text, RemoveKeyboard())
	if err != nil {
		return 0, fmt.Errorf("failed to send to channel %d: %w", p.channelID, err)
	}
	return id, nil
}

// ErrorReporter sends handler failures to admins by direct message and to Sentry.
type ErrorReporter struct {
	messenger Messenger
	adminIDs  []int64
}

func NewErrorReporter(m Messenger, adminIDs []int64) *ErrorReporter {
	return &ErrorReporter{messenger: m, adminIDs: adminIDs}
}

const maxReportRunes = 1500

func (r *ErrorReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	log.Printf("telegram: %v", err)
	telemetry.CaptureError(ctx, err)

	detail := service.TruncateRunes(err.Error(), maxReportRunes)
	text := "🚨 <b>An exception occurred:</b>\n<pre>" + service.EscapeHTML(strings.TrimSpace(detail)) + "</pre>"
	for _, id := range r.adminIDs {
		if id == 0 {
			continue
		}
		if _, sendErr := r.messenger.SendHTML(id, text, nil); sendErr != nil {
			log.Printf("telegram: failed to send error report to admin %d: %v", id, sendErr)
		}
	}
}
