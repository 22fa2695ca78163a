package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"profile-service/internal/core"
	"profile-service/internal/mocks"
	"profile-service/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

const urlPrefix = "/uploads/profile"

type photoFixture struct {
	service *PhotoService
	repo    *mocks.MockUserRepository
	store   *storage.LocalStorage
	dir     string
}

func newPhotoFixture(t *testing.T) *photoFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, urlPrefix)
	require.NoError(t, err)

	repo := new(mocks.MockUserRepository)
	return &photoFixture{
		service: NewPhotoService(repo, store, zerolog.Nop(), 1024),
		repo:    repo,
		store:   store,
		dir:     dir,
	}
}

// seed stores a file directly and returns its URL.
func (f *photoFixture) seed(t *testing.T, name string) string {
	t.Helper()
	url, err := f.store.Save(context.Background(), name, bytes.NewReader(pngBytes))
	require.NoError(t, err)
	return url
}

func (f *photoFixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func isPhotoURL() interface{} {
	return mock.MatchedBy(func(u *string) bool {
		return u != nil && strings.HasPrefix(*u, urlPrefix+"/user-") && strings.HasSuffix(*u, ".png")
	})
}

func TestPhotoReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReplacesOldFile", func(t *testing.T) {
		f := newPhotoFixture(t)
		oldURL := f.seed(t, "user-1.png")

		f.repo.On("GetPhotoURL", ctx, "u-1").Return(&oldURL, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", isPhotoURL()).Return(nil).Once()

		newURL, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(pngBytes))
		require.NoError(t, err)

		assert.NotEqual(t, oldURL, newURL)
		assert.True(t, f.store.Exists(newURL))
		assert.False(t, f.store.Exists(oldURL))
		f.repo.AssertExpectations(t)
	})

	t.Run("Success_FirstPhoto", func(t *testing.T) {
		f := newPhotoFixture(t)
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(nil, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", isPhotoURL()).Return(nil).Once()

		newURL, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(pngBytes))
		require.NoError(t, err)
		assert.True(t, f.store.Exists(newURL))
		assert.Len(t, f.files(t), 1)
	})

	t.Run("Fail_NotAnImage", func(t *testing.T) {
		f := newPhotoFixture(t)

		_, err := f.service.Replace(ctx, "u-1", "me.png", strings.NewReader("plain text, not a picture"))

		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Empty(t, f.files(t))
		f.repo.AssertNotCalled(t, "GetPhotoURL", mock.Anything, mock.Anything)
	})

	t.Run("Fail_TooLarge", func(t *testing.T) {
		f := newPhotoFixture(t)
		big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)

		_, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(big))

		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Empty(t, f.files(t))
	})

	t.Run("Fail_EmptyUpload", func(t *testing.T) {
		f := newPhotoFixture(t)

		_, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(nil))
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("Fail_NameCollision", func(t *testing.T) {
		f := newPhotoFixture(t)
		f.service.newName = func(ext string) string { return "user-42" + ext }
		existing := f.seed(t, "user-42.png")

		_, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(pngBytes))

		assert.ErrorIs(t, err, core.ErrStorage)
		assert.True(t, f.store.Exists(existing))
		f.repo.AssertNotCalled(t, "SetPhotoURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail_UserGone_RemovesNewFile", func(t *testing.T) {
		f := newPhotoFixture(t)
		f.repo.On("GetPhotoURL", ctx, "u-404").Return(nil, core.ErrNotFound).Once()

		_, err := f.service.Replace(ctx, "u-404", "me.png", bytes.NewReader(pngBytes))

		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Empty(t, f.files(t))
	})

	t.Run("Fail_SetPhotoURL_KeepsOldFile", func(t *testing.T) {
		f := newPhotoFixture(t)
		oldURL := f.seed(t, "user-1.png")
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(&oldURL, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", isPhotoURL()).Return(core.ErrStoreUnavailable).Once()

		_, err := f.service.Replace(ctx, "u-1", "me.png", bytes.NewReader(pngBytes))

		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		assert.True(t, f.store.Exists(oldURL))
		assert.Equal(t, []string{"user-1.png"}, f.files(t))
	})

	t.Run("OldFileCleanupFailureIsNotFatal", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		store := new(mocks.MockPhotoStorage)
		svc := NewPhotoService(repo, store, zerolog.Nop(), 1024)
		svc.newName = func(ext string) string { return "user-2" + ext }

		oldURL := urlPrefix + "/user-1.png"
		newURL := urlPrefix + "/user-2.png"
		store.On("Save", ctx, "user-2.png", mock.Anything).Return(newURL, nil).Once()
		repo.On("GetPhotoURL", ctx, "u-1").Return(&oldURL, nil).Once()
		repo.On("SetPhotoURL", ctx, "u-1", &newURL).Return(nil).Once()
		store.On("Delete", mock.Anything, oldURL).Return(errors.New("disk on fire")).Once()

		got, err := svc.Replace(ctx, "u-1", "me.png", bytes.NewReader(pngBytes))

		require.NoError(t, err)
		assert.Equal(t, newURL, got)
		store.AssertExpectations(t)
	})
}

func TestPhotoRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newPhotoFixture(t)
		url := f.seed(t, "user-1.png")
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(&url, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", (*string)(nil)).Return(nil).Once()

		require.NoError(t, f.service.Remove(ctx, "u-1"))
		assert.False(t, f.store.Exists(url))
		f.repo.AssertExpectations(t)
	})

	t.Run("NoPhotoIsNoop", func(t *testing.T) {
		f := newPhotoFixture(t)
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(nil, nil).Once()

		assert.NoError(t, f.service.Remove(ctx, "u-1"))
		f.repo.AssertNotCalled(t, "SetPhotoURL", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail_UserNotFound", func(t *testing.T) {
		f := newPhotoFixture(t)
		f.repo.On("GetPhotoURL", ctx, "u-404").Return(nil, core.ErrNotFound).Once()

		assert.ErrorIs(t, f.service.Remove(ctx, "u-404"), core.ErrNotFound)
	})

	t.Run("Fail_ClearKeepsFile", func(t *testing.T) {
		f := newPhotoFixture(t)
		url := f.seed(t, "user-1.png")
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(&url, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", (*string)(nil)).Return(core.ErrStoreUnavailable).Once()

		err := f.service.Remove(ctx, "u-1")

		assert.ErrorIs(t, err, core.ErrStoreUnavailable)
		// photo_url still points at the file, so it must still exist
		assert.True(t, f.store.Exists(url))
	})

	t.Run("MissingFileStillClears", func(t *testing.T) {
		f := newPhotoFixture(t)
		url := urlPrefix + "/user-gone.png"
		f.repo.On("GetPhotoURL", ctx, "u-1").Return(&url, nil).Once()
		f.repo.On("SetPhotoURL", ctx, "u-1", (*string)(nil)).Return(nil).Once()

		assert.NoError(t, f.service.Remove(ctx, "u-1"))
	})
}

func TestPhotoDiscard(t *testing.T) {
	f := newPhotoFixture(t)
	url := f.seed(t, "user-1.png")

	f.service.Discard(context.Background(), nil)
	assert.True(t, f.store.Exists(url))

	// A canceled request must not prevent cleanup
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.service.Discard(ctx, &url)
	assert.False(t, f.store.Exists(url))

	assert.Equal(t, []string(nil), f.files(t))
}

func TestPhotoDiscard_HasDeadline(t *testing.T) {
	store := new(mocks.MockPhotoStorage)
	svc := NewPhotoService(new(mocks.MockUserRepository), store, zerolog.Nop(), 1024)
	svc.discardTimeout = 50 * time.Millisecond

	url := urlPrefix + "/user-1.png"
	store.On("Delete", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 50*time.Millisecond
	}), url).
		Run(func(args mock.Arguments) {
			// A hung backend is cut off by the deadline.
			<-args.Get(0).(context.Context).Done()
		}).
		Return(core.ErrStorage).
		Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Discard(ctx, &url)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Discard did not return after its deadline")
	}
	store.AssertExpectations(t)
}
