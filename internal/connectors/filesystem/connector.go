// Package filesystem provides a connector that reads documents from a
// local directory tree. It is the built-in connector for Danish legal
// document corpora kept on disk.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches documents from a local directory tree.
type Connector struct {
	sourceID string
	rootPath string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a new filesystem connector rooted at the given path.
func New(sourceID, rootPath string) *Connector {
	return &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental:  true,
		SupportsWatch:        true,
		SupportsBinary:       true, // PDF and DOCX corpora
		SupportsCursorReturn: true,
	}
}

// Validate checks the root path exists and is a readable directory.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := c.validateRoot(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
	}
	return nil
}

// validateRoot checks the configured root without taking the lock.
func (c *Connector) validateRoot() error {
	info, err := os.Stat(c.rootPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("path %s does not exist", c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", c.rootPath)
	}

	f, err := os.Open(c.rootPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.rootPath, err)
	}
	return f.Close()
}

// FullSync walks the directory tree and emits every visible file.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsChan := make(chan domain.RawDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errsChan <- domain.ErrConnectorClosed
			return
		}
		c.mu.Unlock()

		if err := c.validateRoot(); err != nil {
			errsChan <- err
			return
		}

		err := c.walkFiles(ctx, func(path string, info fs.FileInfo) error {
			doc, err := c.readDocument(path, info)
			if err != nil {
				// Unreadable files are skipped, not fatal.
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docsChan <- *doc:
				return nil
			}
		})
		if err != nil && ctx.Err() == nil {
			errsChan <- err
		}
	}()

	return docsChan, errsChan
}

// IncrementalSync emits files modified at or after the cursor time.
// The cursor is the previous scan start in Unix nanoseconds; an empty
// cursor behaves like a full sync.
func (c *Connector) IncrementalSync(
	ctx context.Context, state domain.SyncState,
) (<-chan domain.RawDocumentChange, <-chan error) {
	changesChan := make(chan domain.RawDocumentChange)
	errsChan := make(chan error, 1)

	go func() {
		defer close(changesChan)
		defer close(errsChan)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errsChan <- domain.ErrConnectorClosed
			return
		}
		c.mu.Unlock()

		var since time.Time
		if state.Cursor != "" {
			nanos, err := strconv.ParseInt(state.Cursor, 10, 64)
			if err != nil {
				errsChan <- fmt.Errorf("invalid cursor format: %q", state.Cursor)
				return
			}
			since = time.Unix(0, nanos)
		}

		if err := c.validateRoot(); err != nil {
			errsChan <- err
			return
		}

		scanStart := time.Now()

		err := c.walkFiles(ctx, func(path string, info fs.FileInfo) error {
			// Boundary-inclusive so files stamped exactly at the
			// previous scan are not lost.
			if info.ModTime().Before(since) {
				return nil
			}
			doc, err := c.readDocument(path, info)
			if err != nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changesChan <- domain.RawDocumentChange{
				Type:     domain.ChangeUpdated,
				Document: *doc,
			}:
				return nil
			}
		})
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		errsChan <- &driven.SyncComplete{
			NewCursor: strconv.FormatInt(scanStart.UnixNano(), 10),
		}
	}()

	return changesChan, errsChan
}

// Watch emits change events for the directory tree until the context
// is cancelled.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrConnectorClosed
	}

	if err := c.validateRoot(); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the root and every visible subdirectory.
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	c.watcher = watcher
	changesChan := make(chan domain.RawDocumentChange)

	go func() {
		defer close(changesChan)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// New subdirectories join the watch set.
				if event.Op.Has(fsnotify.Create) && !isHidden(event.Name) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
						continue
					}
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case changesChan <- *change:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changesChan, nil
}

// handleFsEvent converts a filesystem event into a document change.
// Returns nil for events that should be ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if isHidden(event.Name) {
		return nil
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		return &domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				SourceID: c.sourceID,
				URI:      event.Name,
			},
		}
	}

	var changeType domain.ChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Op.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	default:
		return nil // Chmod and friends
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}

	doc, err := c.readDocument(event.Name, info)
	if err != nil {
		return nil
	}

	return &domain.RawDocumentChange{
		Type:     changeType,
		Document: *doc,
	}
}

// Close releases resources. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}
	return nil
}

// walkFiles visits every visible regular file under the root.
func (c *Connector) walkFiles(ctx context.Context, visit func(path string, info fs.FileInfo) error) error {
	return filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.rootPath {
				return err
			}
			return nil // skip unreadable entries
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != c.rootPath && isHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		return visit(path, info)
	})
}

// readDocument reads a file into a RawDocument.
func (c *Connector) readDocument(path string, info fs.FileInfo) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	return &domain.RawDocument{
		SourceID: c.sourceID,
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"filename":  filepath.Base(path),
			"extension": strings.ToLower(ext),
			"size":      info.Size(),
			"modified":  info.ModTime(),
		},
	}, nil
}

// fallbackMIMETypes covers extensions the platform mime database may
// not register, plus the document formats the normalisers handle.
var fallbackMIMETypes = map[string]string{
	"md":       "text/markdown",
	"markdown": "text/markdown",
	"txt":      "text/plain",
	"pdf":      "application/pdf",
	"docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"html":     "text/html",
	"htm":      "text/html",
	"yaml":     "text/yaml",
	"yml":      "text/yaml",
	"toml":     "text/toml",
}

// detectMIMEType determines the content type from the file extension.
func detectMIMEType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "text/plain"
	}

	if mimeType, ok := fallbackMIMETypes[ext]; ok {
		return mimeType
	}

	if mimeType := mime.TypeByExtension("." + ext); mimeType != "" {
		// Strip parameters such as charset.
		if i := strings.Index(mimeType, ";"); i >= 0 {
			mimeType = strings.TrimSpace(mimeType[:i])
		}
		return mimeType
	}

	return "application/octet-stream"
}

// isHidden reports whether any path component starts with a dot.
// The components "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
