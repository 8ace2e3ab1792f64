// Package blobstore uploads hospital logo assets to the external object
// store and hands back a publicly resolvable URL. It defines the
// ObjectStore interface, an in-memory implementation for testing and
// development, and a block-blob HTTP client for the real store. Upload
// failure always aborts the enclosing form submission; nothing here
// retries.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingFileName    = errors.New("file name is required")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxLogoSize is the maximum allowed logo size in bytes (5 MB).
const MaxLogoSize = 5 * 1024 * 1024

// AllowedContentTypes lists the image MIME types accepted for logos.
var AllowedContentTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// ObjectStore is the contract for the logo store: accept a binary file
// under a unique name, return the URL the logo will be served from.
type ObjectStore interface {
	Upload(ctx context.Context, fileName, contentType string, content io.Reader) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// BlobName builds a unique, collision-free object name: a fresh UUID
// prefixed onto the sanitized original file name.
func BlobName(fileName string) string {
	clean := unsafeNameChars.ReplaceAllString(fileName, "_")
	return uuid.New().String() + "-" + clean
}

func validate(fileName, contentType string) error {
	if fileName == "" {
		return ErrMissingFileName
	}
	if contentType != "" && !AllowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	return nil
}

func readCapped(content io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxLogoSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if len(data) > MaxLogoSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedObject struct {
	contentType string
	content     []byte
}

// InMemoryObjectStore is a thread-safe ObjectStore for tests and
// development runs without storage credentials.
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

// NewInMemoryObjectStore returns an empty in-memory store.
func NewInMemoryObjectStore() *InMemoryObjectStore {
	return &InMemoryObjectStore{objects: make(map[string]storedObject)}
}

// Upload validates and stores the file, returning a memory:// URL.
func (s *InMemoryObjectStore) Upload(_ context.Context, fileName, contentType string, content io.Reader) (string, error) {
	if err := validate(fileName, contentType); err != nil {
		return "", err
	}
	data, err := readCapped(content)
	if err != nil {
		return "", err
	}

	name := BlobName(fileName)
	s.mu.Lock()
	s.objects[name] = storedObject{contentType: contentType, content: data}
	s.mu.Unlock()

	return "memory://logos/" + name, nil
}

// Get returns a stored object's content, for test assertions.
func (s *InMemoryObjectStore) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, false
	}
	return obj.content, true
}

// Len reports how many objects are stored.
func (s *InMemoryObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ---------------------------------------------------------------------------
// Block-blob HTTP implementation
// ---------------------------------------------------------------------------

// BlockBlobStore uploads logos to an Azure-style block-blob container via
// a pre-signed (SAS) container URL and derives the public URL from the
// storage account and container names.
type BlockBlobStore struct {
	sasURL    string // container URL including the SAS query string
	account   string
	container string
	http      *http.Client
}

// Option configures a BlockBlobStore.
type Option func(*BlockBlobStore)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(s *BlockBlobStore) { s.http = h }
}

// NewBlockBlobStore builds a store targeting the given SAS container URL.
func NewBlockBlobStore(sasURL, account, container string, opts ...Option) *BlockBlobStore {
	s := &BlockBlobStore{
		sasURL:    sasURL,
		account:   account,
		container: container,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload PUTs the file as a block blob and returns its public URL. Any
// non-2xx response is an upload failure with the store's status attached.
func (s *BlockBlobStore) Upload(ctx context.Context, fileName, contentType string, content io.Reader) (string, error) {
	if err := validate(fileName, contentType); err != nil {
		return "", err
	}
	data, err := readCapped(content)
	if err != nil {
		return "", err
	}

	name := BlobName(fileName)
	target, err := s.blobURL(name)
	if err != nil {
		return "", fmt.Errorf("building blob URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.Header.Set("Content-Type", contentType)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading logo: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("uploading logo: store responded %d", resp.StatusCode)
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.account, s.container, name), nil
}

// blobURL splices the blob name into the SAS container URL, keeping the
// signature query string intact.
func (s *BlockBlobStore) blobURL(name string) (string, error) {
	u, err := url.Parse(s.sasURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + name
	return u.String(), nil
}
