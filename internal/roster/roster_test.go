package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipperizer/internal/domain"
)

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNamesSortedAndDeduplicated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `["Stolas", "Moxxie", " Blitzo ", "Moxxie", ""]`)

	l := NewLoader(path, "assets/face_images", nil)
	assert.Equal(t, []string{"Blitzo", "Moxxie", "Stolas"}, l.Names())
}

func TestFallbackWhenManifestMissing(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.json"), "img", nil)
	assert.Equal(t, []string{"Blitzo", "Stolas"}, l.Names())

	names := l.Names()
	names[0] = "changed"
	assert.Equal(t, "Blitzo", Fallback[0], "callers cannot modify the fallback")
}

func TestFallbackWhenManifestInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `{"names": ["Loona"]}`)

	_, err := ReadManifest(path)
	assert.Error(t, err)
	assert.Equal(t, Fallback, NewLoader(path, "img", nil).Names())
}

func TestEntities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `["Stolas", "Blitzo"]`)

	l := NewLoader(path, "assets/face_images", nil)
	assert.Equal(t, []domain.Entity{
		{ID: "Blitzo", Image: "assets/face_images/Blitzo.png"},
		{ID: "Stolas", Image: "assets/face_images/Stolas.png"},
	}, l.Entities())
}

func startWatcher(t *testing.T, path string) (<-chan []domain.Entity, func() error) {
	t.Helper()
	changed := make(chan []domain.Entity, 4)
	loader := NewLoader(path, "img", nil)
	w := NewWatcher(loader, func(entities []domain.Entity) { changed <- entities }, nil).
		WithDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Watch(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	stop := func() error {
		cancel()
		return <-errc
	}
	t.Cleanup(func() { cancel() })
	return changed, stop
}

func TestWatcherReportsNewRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	writeManifest(t, path, `["Blitzo"]`)

	changed, stop := startWatcher(t, path)

	writeManifest(t, filepath.Join(dir, "other.json"), `[]`)
	writeManifest(t, path, `["Stolas", "Blitzo"]`)

	select {
	case entities := <-changed:
		assert.Equal(t, []domain.Entity{
			{ID: "Blitzo", Image: "img/Blitzo.png"},
			{ID: "Stolas", Image: "img/Stolas.png"},
		}, entities)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the manifest change")
	}

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestWatcherIgnoresSameNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	writeManifest(t, path, `["Blitzo", "Stolas"]`)

	changed, stop := startWatcher(t, path)

	writeManifest(t, path, `["Stolas", "Blitzo", "Stolas"]`)
	writeManifest(t, path, `not json`)

	select {
	case entities := <-changed:
		t.Fatalf("unexpected roster change: %v", entities)
	case <-time.After(300 * time.Millisecond):
	}

	assert.ErrorIs(t, stop(), context.Canceled)
}
