package gitdates

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t   *testing.T
	dir string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	r := &testRepo{t: t, dir: dir}
	r.git(time.Time{}, "init", "-q")
	return r
}

func (r *testRepo) git(at time.Time, args ...string) {
	r.t.Helper()
	full := append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()
	if !at.IsZero() {
		stamp := at.Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %v: %s", args, out)
}

func (r *testRepo) write(rel, body string) string {
	r.t.Helper()
	path := filepath.Join(r.dir, rel)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (r *testRepo) commit(at time.Time, msg string) {
	r.t.Helper()
	r.git(at, "add", "-A")
	r.git(at, "commit", "-q", "-m", msg)
}

func TestGitHistoryCreatedAndUpdated(t *testing.T) {
	repo := newTestRepo(t)
	t1 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(72 * time.Hour)

	path := repo.write("src/content/blog/hello/index.md", "first\n")
	repo.commit(t1, "add post")
	repo.write("src/content/blog/hello/index.md", "first\nsecond\n")
	repo.commit(t2, "edit post")

	h := NewGitHistory(repo.dir, zerolog.Nop())
	ctx := context.Background()

	first := h.Earliest(ctx, path)
	require.True(t, first.Found)
	assert.True(t, first.Time.Equal(t1), "earliest = %v, want %v", first.Time, t1)

	last := h.Latest(ctx, path)
	require.True(t, last.Found)
	assert.True(t, last.Time.Equal(t2), "latest = %v, want %v", last.Time, t2)
}

func TestGitHistoryReaddedFilePicksEarliest(t *testing.T) {
	repo := newTestRepo(t)
	t1 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	path := repo.write("post.md", "v1\n")
	repo.commit(t1, "add")
	require.NoError(t, os.Remove(path))
	repo.commit(t1.Add(time.Hour), "remove")
	repo.write("post.md", "v2\n")
	repo.commit(t1.Add(2*time.Hour), "re-add")

	first := NewGitHistory(repo.dir, zerolog.Nop()).Earliest(context.Background(), path)
	require.True(t, first.Found)
	assert.True(t, first.Time.Equal(t1))
}

func TestGitHistoryFollowsRenames(t *testing.T) {
	repo := newTestRepo(t)
	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	repo.write("old/index.md", "a post body that is long enough to be detected as a rename\n")
	repo.commit(t1, "add")
	repo.git(t1.Add(time.Hour), "mv", "old", "new")
	repo.commit(t1.Add(time.Hour), "rename")

	first := NewGitHistory(repo.dir, zerolog.Nop()).Earliest(context.Background(), filepath.Join(repo.dir, "new/index.md"))
	require.True(t, first.Found)
	assert.True(t, first.Time.Equal(t1))
}

func TestGitHistoryUntrackedPath(t *testing.T) {
	repo := newTestRepo(t)
	repo.write("tracked.md", "x\n")
	repo.commit(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "init")
	path := repo.write("draft/index.md", "not committed\n")

	h := NewGitHistory(repo.dir, zerolog.Nop())
	assert.False(t, h.Earliest(context.Background(), path).Found)
	assert.False(t, h.Latest(context.Background(), path).Found)
}

func TestGitHistoryOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	h := NewGitHistory(dir, zerolog.Nop())
	assert.False(t, h.Earliest(context.Background(), filepath.Join(dir, "missing.md")).Found)
	assert.False(t, h.Latest(context.Background(), filepath.Join(dir, "missing.md")).Found)
}

func stubGit(t *testing.T, fn func(ctx context.Context, dir string, args ...string) (string, error)) {
	t.Helper()
	orig := runGit
	runGit = fn
	t.Cleanup(func() { runGit = orig })
}

func TestGitHistoryCommandErrorIsAbsent(t *testing.T) {
	stubGit(t, func(context.Context, string, ...string) (string, error) {
		return "", errors.New("exec: git not found")
	})
	h := NewGitHistory("/nowhere", zerolog.Nop())
	assert.Equal(t, Absent(), h.Earliest(context.Background(), "a"))
	assert.Equal(t, Absent(), h.Latest(context.Background(), "a"))
}

func TestGitHistoryParsesOutput(t *testing.T) {
	stubGit(t, func(_ context.Context, _ string, args ...string) (string, error) {
		if args[1] == "-1" {
			return "2024-06-01T12:00:00+08:00\n", nil
		}
		return "2024-05-01T12:00:00+08:00\n\n2024-01-01T12:00:00+08:00\n", nil
	})
	h := NewGitHistory("/repo", zerolog.Nop())

	first := h.Earliest(context.Background(), "a")
	require.True(t, first.Found)
	assert.True(t, first.Time.Equal(time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)))

	last := h.Latest(context.Background(), "a")
	require.True(t, last.Found)
	assert.True(t, last.Time.Equal(time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC)))
}

func TestGitHistoryGarbageOutputIsAbsent(t *testing.T) {
	stubGit(t, func(context.Context, string, ...string) (string, error) {
		return "not a date\n", nil
	})
	h := NewGitHistory("/repo", zerolog.Nop())
	assert.False(t, h.Earliest(context.Background(), "a").Found)
	assert.False(t, h.Latest(context.Background(), "a").Found)
}

func TestResolveMissingFileInRealRepo(t *testing.T) {
	repo := newTestRepo(t)
	repo.write("README.md", "x\n")
	repo.commit(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "init")

	r := NewResolver(repo.dir)
	before := time.Now()
	got := r.Resolve(context.Background(), "does-not-exist", Declared{})
	assert.WithinDuration(t, before, got.Published, 5*time.Second)
	assert.False(t, got.HasUpdate())
}
