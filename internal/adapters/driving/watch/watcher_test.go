package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// --- Mock implementations ---

type uploadCall struct {
	path     string
	docType  domain.DocumentType
	filename string
}

type mockIngestService struct {
	mu      sync.Mutex
	uploads []uploadCall
	done    chan struct{}
}

func newMockIngestService() *mockIngestService {
	return &mockIngestService{done: make(chan struct{}, 16)}
}

func (m *mockIngestService) Upload(ctx context.Context, path string, docType domain.DocumentType, filename string) (*domain.Document, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, uploadCall{path: path, docType: docType, filename: filename})
	m.mu.Unlock()
	m.done <- struct{}{}
	return &domain.Document{ID: "doc-1", Filename: filename, Type: docType, Status: domain.StatusCompleted}, nil
}

func (m *mockIngestService) Ingest(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	return doc, nil
}

func (m *mockIngestService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIngestService) List(ctx context.Context, skip, limit int) ([]domain.Document, error) {
	return nil, nil
}

func (m *mockIngestService) Remove(ctx context.Context, id string) error {
	return nil
}

func (m *mockIngestService) calls() []uploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uploadCall, len(m.uploads))
	copy(out, m.uploads)
	return out
}

// --- Tests ---

func TestStartRejectsMissingDirectory(t *testing.T) {
	w := New(newMockIngestService(), "/non/existent/path")

	err := w.Start(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "watch directory error")
}

func TestStartRejectsFilePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0644))

	w := New(newMockIngestService(), file)

	err := w.Start(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestStartStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	w := New(newMockIngestService(), dir)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	ingest := newMockIngestService()
	w := New(ingest, dir)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("dropped content"), 0644))

	select {
	case <-ingest.done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ingestion")
	}

	calls := ingest.calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, path, calls[0].path)
	assert.Equal(t, domain.DocumentTypeTXT, calls[0].docType)
	assert.Equal(t, "notes.txt", calls[0].filename)
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		op           fsnotify.Op
		createFile   bool
		createDir    bool
		expectUpload bool
		expectedType domain.DocumentType
	}{
		{
			name:         "create txt file",
			filename:     "doc.txt",
			op:           fsnotify.Create,
			createFile:   true,
			expectUpload: true,
			expectedType: domain.DocumentTypeTXT,
		},
		{
			name:         "write pdf file",
			filename:     "doc.pdf",
			op:           fsnotify.Write,
			createFile:   true,
			expectUpload: true,
			expectedType: domain.DocumentTypePDF,
		},
		{
			name:         "uppercase extension",
			filename:     "DOC.TXT",
			op:           fsnotify.Create,
			createFile:   true,
			expectUpload: true,
			expectedType: domain.DocumentTypeTXT,
		},
		{
			name:         "unsupported extension skipped",
			filename:     "image.png",
			op:           fsnotify.Create,
			createFile:   true,
			expectUpload: false,
		},
		{
			name:         "hidden file skipped",
			filename:     ".hidden.txt",
			op:           fsnotify.Create,
			createFile:   true,
			expectUpload: false,
		},
		{
			name:         "remove event ignored",
			filename:     "gone.txt",
			op:           fsnotify.Remove,
			expectUpload: false,
		},
		{
			name:         "chmod event ignored",
			filename:     "doc.txt",
			op:           fsnotify.Chmod,
			createFile:   true,
			expectUpload: false,
		},
		{
			name:         "directory skipped",
			filename:     "subdir.txt",
			op:           fsnotify.Create,
			createDir:    true,
			expectUpload: false,
		},
		{
			name:         "vanished file skipped",
			filename:     "vanished.txt",
			op:           fsnotify.Create,
			expectUpload: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.filename)
			if tt.createDir {
				require.NoError(t, os.Mkdir(path, 0755))
			} else if tt.createFile {
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
			}

			ingest := newMockIngestService()
			w := New(ingest, dir)

			w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: tt.op})

			calls := ingest.calls()
			if tt.expectUpload {
				require.Len(t, calls, 1)
				assert.Equal(t, path, calls[0].path)
				assert.Equal(t, tt.expectedType, calls[0].docType)
				assert.Equal(t, tt.filename, calls[0].filename)
			} else {
				assert.Empty(t, calls)
			}
		})
	}

	t.Run("combined write and chmod", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		ingest := newMockIngestService()
		w := New(ingest, dir)

		w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Write | fsnotify.Chmod})

		assert.Len(t, ingest.calls(), 1)
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	w := New(newMockIngestService(), t.TempDir())

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestStartAfterCloseFails(t *testing.T) {
	w := New(newMockIngestService(), t.TempDir())
	require.NoError(t, w.Close())

	err := w.Start(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}
