package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	xhttp "FinNotify/pkg/http"
	"FinNotify/pkg/logger"

	"github.com/gen2brain/beeep"
)

var _ repository.Notifier = (*Desktop)(nil)

// Desktop raises a native desktop notification.
// Remote icons are downloaded once into iconDir since the OS wants a local file.
type Desktop struct {
	notify  func(title, message, icon string) error
	client  *xhttp.Client
	iconDir string
	log     *logger.Logger
}

type DesktopOption func(*Desktop)

func NewDesktop(l *logger.Logger, opts ...DesktopOption) *Desktop {
	d := &Desktop{
		notify:  beeep.Notify,
		client:  xhttp.NewClient(),
		iconDir: filepath.Join(os.TempDir(), "finnotify-icons"),
		log:     l,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithIconDir sets where downloaded icons are kept.
func WithIconDir(dir string) DesktopOption {
	return func(d *Desktop) { d.iconDir = dir }
}

// WithIconClient sets the HTTP client used to download icons.
func WithIconClient(c *xhttp.Client) DesktopOption {
	return func(d *Desktop) { d.client = c }
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Notify(ctx context.Context, req models.NotificationRequest) error {
	icon, err := d.resolveIcon(ctx, req.IconRef)
	if err != nil {
		d.log.Warn("icon unavailable, notifying without it",
			logger.String("icon", req.IconRef),
			logger.Error(err),
		)
		icon = ""
	}
	if err := d.notify(req.Title, req.Message, icon); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}

func (d *Desktop) resolveIcon(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	sum := sha1.Sum([]byte(ref))
	local := filepath.Join(d.iconDir, hex.EncodeToString(sum[:8])+path.Ext(ref))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	body, err := d.client.GetBytes(ctx, ref, nil)
	if err != nil {
		return "", fmt.Errorf("download icon: %w", err)
	}
	if err := os.MkdirAll(d.iconDir, 0o755); err != nil {
		return "", fmt.Errorf("create icon dir: %w", err)
	}
	if err := os.WriteFile(local, body, 0o644); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}
	return local, nil
}
