package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tally/internal/config"
)

const userAgent = "tally/0.1.0"

// Service delivers best-effort notices to requesters. Failures are for the
// caller to log; they must never stall queue progression.
type Service interface {
	NotifyTurnReady(ctx context.Context, requesterID string, expiresAt time.Time) error
	NotifyQueuePosition(ctx context.Context, requesterID string, position int) error
	NotifyReservationExpired(ctx context.Context, requesterID string) error
	NotifySessionExpired(ctx context.Context, requesterID, workflow string) error
	NotifyResultsSaved(ctx context.Context, requesterID, workflow string, names int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) NotifyTurnReady(ctx context.Context, requesterID string, expiresAt time.Time) error {
	if !n.settings.TurnReady {
		return nil
	}
	window := time.Until(expiresAt).Round(time.Second)
	data := payload{
		title:    "Tally - Your Turn",
		message:  fmt.Sprintf("@%s it is your turn to submit screenshots. The slot expires in %s.", requesterID, window),
		tags:     []string{"tally", "queue", "turn"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueuePosition(ctx context.Context, requesterID string, position int) error {
	if !n.settings.QueuePosition {
		return nil
	}
	data := payload{
		title:   "Tally - Queue Update",
		message: fmt.Sprintf("@%s you are now number %d in the OCR queue.", requesterID, position),
		tags:    []string{"tally", "queue", "position"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReservationExpired(ctx context.Context, requesterID string) error {
	if !n.settings.TurnReady {
		return nil
	}
	data := payload{
		title:   "Tally - Slot Expired",
		message: fmt.Sprintf("@%s your reserved slot expired. Request access again to rejoin the queue.", requesterID),
		tags:    []string{"tally", "queue", "expired"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionExpired(ctx context.Context, requesterID, workflow string) error {
	if !n.settings.SessionExpired {
		return nil
	}
	data := payload{
		title:   "Tally - Session Expired",
		message: fmt.Sprintf("@%s your %s capture session timed out due to inactivity.", requesterID, workflow),
		tags:    []string{"tally", "session", "expired"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyResultsSaved(ctx context.Context, requesterID, workflow string, names int) error {
	if !n.settings.ResultsSaved {
		return nil
	}
	data := payload{
		title:   "Tally - Results Saved",
		message: fmt.Sprintf("Saved %d scores from %s capture by %s.", names, workflow, requesterID),
		tags:    []string{"tally", "results", "saved"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.settings.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Tally - Error",
		message:  builder.String(),
		tags:     []string{"tally", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Tally - Test",
		message:  "Notification system test",
		tags:     []string{"tally", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTurnReady(context.Context, string, time.Time) error      { return nil }
func (noopService) NotifyQueuePosition(context.Context, string, int) error        { return nil }
func (noopService) NotifyReservationExpired(context.Context, string) error        { return nil }
func (noopService) NotifySessionExpired(context.Context, string, string) error    { return nil }
func (noopService) NotifyResultsSaved(context.Context, string, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
