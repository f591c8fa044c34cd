package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dropwatch/internal/config"
	"dropwatch/internal/runerr"
)

const userAgent = "Dropwatch-Go/0.1.0"

// Service defines the notification surface exposed to the run controllers.
type Service interface {
	PublishDigest(ctx context.Context, digest *Digest) error
	PublishNewReleases(ctx context.Context, batch *Batch) error
	NotifyError(ctx context.Context, err error, context string) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:       topic,
		client:         client,
		digestEnabled:  cfg.Notifications.Digest,
		releaseEnabled: cfg.Notifications.Releases,
		errorsEnabled:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	digestEnabled  bool
	releaseEnabled bool
	errorsEnabled  bool
}

func (n *ntfyService) PublishDigest(ctx context.Context, digest *Digest) error {
	if !n.digestEnabled || digest.Empty() {
		return nil
	}
	data := payload{
		title:   fmt.Sprintf("Dropwatch - Releases for %s", digest.Target.Human()),
		message: renderDigest(digest),
		tags:    []string{"dropwatch", "digest"},
	}
	if digest.Unconfirmed() > 0 || len(digest.Issues) > 0 {
		data.tags = append(data.tags, "review")
	}
	if err := n.send(ctx, data); err != nil {
		return runerr.Wrap(runerr.ErrDelivery, "notify", "publish digest", "", err)
	}
	return nil
}

func (n *ntfyService) PublishNewReleases(ctx context.Context, batch *Batch) error {
	if !n.releaseEnabled || batch.Empty() {
		return nil
	}
	data := payload{
		title:    fmt.Sprintf("Dropwatch - %d New Release(s)", batch.Size()),
		message:  renderBatch(batch),
		tags:     []string{"dropwatch", "releases"},
		priority: "high",
	}
	if err := n.send(ctx, data); err != nil {
		return runerr.Wrap(runerr.ErrDelivery, "notify", "publish releases", "", err)
	}
	return nil
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorsEnabled {
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
		title:    "Dropwatch - Error",
		message:  builder.String(),
		tags:     []string{"dropwatch", "error", "alert"},
		priority: "high",
	}
	if sendErr := n.send(ctx, data); sendErr != nil {
		return runerr.Wrap(runerr.ErrDelivery, "notify", "publish error", "", sendErr)
	}
	return nil
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Dropwatch - Test",
		message:  "Notification system test",
		tags:     []string{"dropwatch", "test"},
		priority: "low",
	}
	if err := n.send(ctx, data); err != nil {
		return runerr.Wrap(runerr.ErrDelivery, "notify", "test notification", "", err)
	}
	return nil
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

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

func (noopService) PublishDigest(context.Context, *Digest) error      { return nil }
func (noopService) PublishNewReleases(context.Context, *Batch) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error  { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
