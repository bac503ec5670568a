package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/725aayush/setu-sharing/pkg/protocol"
)

type fakeUploader struct {
	mu        sync.Mutex
	calls     []string // relPath per call
	entered   chan struct{}
	enterOnce sync.Once
	block     chan struct{}
	failErr   error
}

func (f *fakeUploader) Upload(_ context.Context, _, relPath, _ string, content io.Reader) (*protocol.UploadResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, relPath)
	f.mu.Unlock()
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	if f.failErr != nil {
		return nil, f.failErr
	}
	io.Copy(io.Discard, content)
	return &protocol.UploadResponse{Ok: true, Filename: "x"}, nil
}

type fakeNav struct {
	mu         sync.Mutex
	path       string
	refreshes  int
	refreshErr error
}

func (f *fakeNav) Path() string {
	return f.path
}

func (f *fakeNav) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func TestUpload_TargetsCurrentDirAndRefreshesOnce(t *testing.T) {
	up := &fakeUploader{}
	nav := &fakeNav{path: "Photos"}
	c := NewUploadCoordinator(up, nav, "tok")

	resp, err := c.Upload(context.Background(), "beach.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Ok {
		t.Error("expected ok response")
	}
	if len(up.calls) != 1 || up.calls[0] != "Photos" {
		t.Errorf("upload targeted %v, want [Photos]", up.calls)
	}
	if nav.refreshes != 1 {
		t.Errorf("listing refreshed %d times, want exactly 1", nav.refreshes)
	}
}

func TestUpload_FailureDoesNotRefresh(t *testing.T) {
	up := &fakeUploader{failErr: errors.New("upload failed")}
	nav := &fakeNav{}
	c := NewUploadCoordinator(up, nav, "tok")

	if _, err := c.Upload(context.Background(), "x.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
	if nav.refreshes != 0 {
		t.Errorf("failed upload refreshed the listing %d times", nav.refreshes)
	}
}

func TestUpload_SingleFlight(t *testing.T) {
	up := &fakeUploader{block: make(chan struct{}), entered: make(chan struct{})}
	nav := &fakeNav{}
	c := NewUploadCoordinator(up, nav, "tok")

	firstDone := make(chan error)
	go func() {
		_, err := c.Upload(context.Background(), "a.txt", strings.NewReader("a"))
		firstDone <- err
	}()
	<-up.entered

	if _, err := c.Upload(context.Background(), "b.txt", strings.NewReader("b")); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("expected ErrUploadInFlight, got %v", err)
	}

	close(up.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if c.InFlight() {
		t.Error("coordinator still marked in flight after completion")
	}

	// And a later upload is allowed again.
	if _, err := c.Upload(context.Background(), "c.txt", strings.NewReader("c")); err != nil {
		t.Fatalf("follow-up upload failed: %v", err)
	}
}

func TestUpload_RefreshFailureIsNotFatal(t *testing.T) {
	up := &fakeUploader{}
	nav := &fakeNav{refreshErr: errors.New("listing failed")}
	c := NewUploadCoordinator(up, nav, "tok")

	resp, err := c.Upload(context.Background(), "x.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload should succeed despite refresh failure: %v", err)
	}
	if !resp.Ok {
		t.Error("expected ok response")
	}
}

type fetchFunc func(ctx context.Context, url string) (io.ReadCloser, string, error)

func (f fetchFunc) Fetch(ctx context.Context, url string) (io.ReadCloser, string, error) {
	return f(ctx, url)
}

func TestSaveURL_UsesServerFilename(t *testing.T) {
	dir := t.TempDir()
	f := fetchFunc(func(_ context.Context, _ string) (io.ReadCloser, string, error) {
		return io.NopCloser(strings.NewReader("zipbytes")), "Photos.zip", nil
	})

	dest, n, err := SaveURL(context.Background(), f, "http://x/archive", dir, "fallback.zip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(dest) != "Photos.zip" {
		t.Errorf("expected Photos.zip, got %s", dest)
	}
	if n != 8 {
		t.Errorf("expected 8 bytes, got %d", n)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "zipbytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestSaveURL_FallbackAndTraversalStripped(t *testing.T) {
	dir := t.TempDir()
	f := fetchFunc(func(_ context.Context, _ string) (io.ReadCloser, string, error) {
		return io.NopCloser(strings.NewReader("x")), "../../evil.txt", nil
	})

	dest, _, err := SaveURL(context.Background(), f, "http://x/d", dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(dest) != dir {
		t.Errorf("download escaped destination directory: %s", dest)
	}

	f = fetchFunc(func(_ context.Context, _ string) (io.ReadCloser, string, error) {
		return io.NopCloser(strings.NewReader("x")), "", nil
	})
	dest, _, err = SaveURL(context.Background(), f, "http://x/d", dir, "plain.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(dest) != "plain.bin" {
		t.Errorf("expected fallback name, got %s", dest)
	}
}
