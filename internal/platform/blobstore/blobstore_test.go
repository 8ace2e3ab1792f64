package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
)

var blobNameRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}-`)

func TestBlobName_SanitizesAndPrefixes(t *testing.T) {
	name := BlobName("city care logo (final).png")
	if !blobNameRe.MatchString(name) {
		t.Errorf("blob name %q does not start with a uuid prefix", name)
	}
	if !strings.HasSuffix(name, "-city_care_logo__final_.png") {
		t.Errorf("blob name %q does not end with the sanitized file name", name)
	}
}

func TestBlobName_Unique(t *testing.T) {
	if BlobName("a.png") == BlobName("a.png") {
		t.Error("two uploads of the same file must get distinct names")
	}
}

func TestInMemoryUpload(t *testing.T) {
	store := NewInMemoryObjectStore()
	url, err := store.Upload(context.Background(), "logo.png", "image/png", bytes.NewReader([]byte("png-bytes")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "memory://logos/") {
		t.Errorf("url = %q, want memory://logos/ prefix", url)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	name := strings.TrimPrefix(url, "memory://logos/")
	content, ok := store.Get(name)
	if !ok || string(content) != "png-bytes" {
		t.Errorf("stored content = %q, want png-bytes", content)
	}
}

func TestUpload_Validation(t *testing.T) {
	store := NewInMemoryObjectStore()

	_, err := store.Upload(context.Background(), "", "image/png", bytes.NewReader(nil))
	if !errors.Is(err, ErrMissingFileName) {
		t.Errorf("empty name: err = %v, want ErrMissingFileName", err)
	}

	_, err = store.Upload(context.Background(), "doc.pdf", "application/pdf", bytes.NewReader(nil))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("pdf: err = %v, want ErrInvalidContentType", err)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	store := NewInMemoryObjectStore()
	big := io.LimitReader(neverEnding('x'), MaxLogoSize+1)
	_, err := store.Upload(context.Background(), "big.png", "image/png", big)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestBlockBlobUpload_PutsAndBuildsPublicURL(t *testing.T) {
	var gotMethod, gotBlobType, gotPath, gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBlobType = r.Header.Get("x-ms-blob-type")
		gotPath = r.URL.Path
		gotSig = r.URL.Query().Get("sig")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewBlockBlobStore(srv.URL+"/logos?sig=abc", "orbitstore", "logos")
	url, err := store.Upload(context.Background(), "logo.png", "image/png", bytes.NewReader([]byte("data")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotBlobType != "BlockBlob" {
		t.Errorf("x-ms-blob-type = %q, want BlockBlob", gotBlobType)
	}
	if !strings.HasPrefix(gotPath, "/logos/") {
		t.Errorf("path = %q, want /logos/<name>", gotPath)
	}
	if gotSig != "abc" {
		t.Errorf("sig = %q, want SAS query preserved", gotSig)
	}
	if string(gotBody) != "data" {
		t.Errorf("body = %q, want data", gotBody)
	}
	if !strings.HasPrefix(url, "https://orbitstore.blob.core.windows.net/logos/") {
		t.Errorf("public url = %q", url)
	}
}

func TestBlockBlobUpload_StoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := NewBlockBlobStore(srv.URL+"/logos?sig=abc", "orbitstore", "logos")
	_, err := store.Upload(context.Background(), "logo.png", "image/png", bytes.NewReader([]byte("data")))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want upload failure carrying the store status", err)
	}
}
