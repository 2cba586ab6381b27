package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipperizer/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err, "failed to create test repository")
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Entities: []domain.Entity{
			domain.NewEntity("Stolas", "s.png", 1, 2),
			domain.NewEntity("Blitzo", "", -3, 4.5),
			domain.NewEntity("Moxxie", "m.png", 0, 0),
		},
		Relationships: []domain.Relationship{
			domain.NewMerged("Stolas", "Blitzo", domain.KindLove),
			domain.NewDirected("Moxxie", "Blitzo", domain.KindHate),
		},
	}
}

func TestLoadWithoutAutosave(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := sampleSnapshot()

	saved, err := repo.Save(ctx, want)
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSaveSkipsUnchangedSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	require.True(t, saved)

	saved, err = repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	assert.False(t, saved)

	changed := sampleSnapshot()
	changed.Entities[0].Position.X = 99
	saved, err = repo.Save(ctx, changed)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestSaveReplacesPreviousGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)

	smaller := domain.Snapshot{
		Entities:      []domain.Entity{domain.NewEntity("Loona", "", 0, 0)},
		Relationships: []domain.Relationship{},
	}
	_, err = repo.Save(ctx, smaller)
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, smaller.Entities, got.Entities)
	assert.Empty(t, got.Relationships)
}

func TestSaveEmptyGraphIsAnAutosave(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, domain.NewSnapshot())
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got, "a cleared graph is still a saved state")
	assert.Empty(t, got.Entities)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	saved, err := repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, saved, "clearing forgets the digest")
}

func TestForeignKeysCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleSnapshot())
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, `DELETE FROM entities WHERE id = 'Blitzo'`)
	require.NoError(t, err)

	var count int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count))
	assert.Zero(t, count)
}
