package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/atotto/clipboard"
)

var (
	// ErrShareCanceled stops Share without trying further sharers.
	ErrShareCanceled = errors.New("share canceled")
	// ErrNoSharer is returned when no sharer can take the item.
	ErrNoSharer = errors.New("no sharer available")
)

var unsafeTitleChars = regexp.MustCompile(`(?i)[^a-z0-9\s]`)

// ShareItem is a flyer prepared for sharing.
type ShareItem struct {
	Title       string
	Message     string
	URL         string
	FileName    string
	ContentType string
	Data        []byte
}

// Sharer hands a flyer to some outside channel.
type Sharer interface {
	Name() string
	CanShare(item *ShareItem) bool
	Share(ctx context.Context, item *ShareItem) error
}

// Share tries each capable sharer in order until one succeeds. A failure
// falls through to the next sharer; ErrShareCanceled stops immediately.
func Share(ctx context.Context, item *ShareItem, sharers ...Sharer) (Sharer, error) {
	var errs []error
	for _, s := range sharers {
		if !s.CanShare(item) {
			continue
		}
		err := s.Share(ctx, item)
		if err == nil {
			return s, nil
		}
		if errors.Is(err, ErrShareCanceled) {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoSharer
	}
	return nil, errors.Join(errs...)
}

// ShareFileName is the title with anything but letters, digits and
// whitespace replaced by '_', plus the image's extension.
func ShareFileName(title, imagePath string) string {
	ext := strings.ToLower(path.Ext(imagePath))
	if ext == "" {
		ext = ".jpg"
	}
	return unsafeTitleChars.ReplaceAllString(title, "_") + ext
}

// ShareMessage is the text sent along with a flyer.
func ShareMessage(title, companyName string) string {
	return title + "\n\nShared from " + companyName
}

// ClipboardSharer copies the message and image link to the clipboard.
type ClipboardSharer struct {
	write       func(string) error
	unsupported bool
}

// NewClipboardSharer uses the system clipboard.
func NewClipboardSharer() *ClipboardSharer {
	return &ClipboardSharer{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

func (s *ClipboardSharer) Name() string {
	return "clipboard"
}

func (s *ClipboardSharer) CanShare(item *ShareItem) bool {
	return !s.unsupported && item.URL != ""
}

func (s *ClipboardSharer) Share(ctx context.Context, item *ShareItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(item.Message + "\n" + item.URL)
}

// DownloadSharer saves the image to a directory for the user to send on.
type DownloadSharer struct {
	Dir string
	// Saved is the path of the last written file.
	Saved string
}

func (s *DownloadSharer) Name() string {
	return "download"
}

func (s *DownloadSharer) CanShare(item *ShareItem) bool {
	return len(item.Data) > 0
}

func (s *DownloadSharer) Share(ctx context.Context, item *ShareItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(s.Dir, filepath.Base(item.FileName))
	if err := os.WriteFile(target, item.Data, 0o644); err != nil {
		return err
	}
	s.Saved = target
	return nil
}
