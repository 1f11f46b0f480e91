package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory storage backend for tests.
type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error

	deleteCalls int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "http://cdn.test/" + key
}

const maxTestBytes = 5 * 1024 * 1024

func TestUpload_Success(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, maxTestBytes)

	contents := "%PDF-1.7 test document"
	artifact, err := svc.Upload(context.Background(), strings.NewReader(contents), AllowedContentType, int64(len(contents)))
	require.NoError(t, err)

	require.Equal(t, "http://cdn.test/"+artifact.PublicID, artifact.URL)
	require.Equal(t, []byte(contents), store.objects[artifact.PublicID])
}

func TestUpload_UnsupportedTypeRegardlessOfSize(t *testing.T) {
	svc := NewService(newFakeStorage(), maxTestBytes)

	for _, size := range []int64{1, 1024, maxTestBytes, maxTestBytes * 2} {
		_, err := svc.Upload(context.Background(), strings.NewReader("x"), "image/png", size)
		require.ErrorIs(t, err, ErrUnsupportedType, "size=%d", size)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	svc := NewService(newFakeStorage(), maxTestBytes)

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), AllowedContentType, maxTestBytes+1)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestUpload_EmptyFile(t *testing.T) {
	svc := NewService(newFakeStorage(), maxTestBytes)

	_, err := svc.Upload(context.Background(), strings.NewReader(""), AllowedContentType, 0)
	require.ErrorIs(t, err, ErrNoFile)
}

func TestUpload_BackendFailure(t *testing.T) {
	store := newFakeStorage()
	store.uploadErr = errors.New("bucket unavailable")
	svc := NewService(store, maxTestBytes)

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), AllowedContentType, 1)
	require.ErrorIs(t, err, ErrBackend)
	require.Contains(t, err.Error(), "bucket unavailable")
}

func TestDelete_MissingReferenceNeverReachesBackend(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, maxTestBytes)

	err := svc.Delete(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingReference)
	require.Zero(t, store.deleteCalls)
}

func TestDelete_BackendFailure(t *testing.T) {
	store := newFakeStorage()
	store.deleteErr = errors.New("access denied")
	svc := NewService(store, maxTestBytes)

	err := svc.Delete(context.Background(), "documents/some.pdf")
	require.ErrorIs(t, err, ErrBackend)
	require.Contains(t, err.Error(), "access denied")
}

func TestUploadThenDelete_RoundTrip(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, maxTestBytes)

	contents := "%PDF-1.7 round trip"
	artifact, err := svc.Upload(context.Background(), strings.NewReader(contents), AllowedContentType, int64(len(contents)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), artifact.PublicID))
	require.NotContains(t, store.objects, artifact.PublicID)
}
