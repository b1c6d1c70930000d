package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/src/auth.ts b/src/auth.ts
index 83aa1c0..f00dcafe 100644
--- a/src/auth.ts
+++ b/src/auth.ts
@@ -10,6 +10,7 @@ export function login(req: Request) {
 const session = getSession(req);
-const token = req.query.token;
+const token = req.headers.authorization;
+  const x = 1;
 return session;
@@ -30,3 +31,3 @@ export function logout() {
 clearSession();
-removeToken(token);
+revokeToken(token);
`

func TestParse(t *testing.T) {
	fd := Parse(samplePatch)

	require.Len(t, fd.Hunks, 2)
	assert.Equal(t, "src/auth.ts", fd.Path)

	first := fd.Hunks[0]
	assert.Equal(t, 10, first.OldStart)
	assert.Equal(t, 6, first.OldLines)
	assert.Equal(t, 10, first.NewStart)
	assert.Equal(t, 7, first.NewLines)
	require.Len(t, first.Lines, 5)

	// Context line carries both counters
	ctx := first.Lines[0]
	assert.Equal(t, KindContext, ctx.Kind)
	assert.Equal(t, 10, ctx.OldLine)
	assert.Equal(t, 10, ctx.NewLine)

	// Removal only advances the old counter
	removed := first.Lines[1]
	assert.Equal(t, KindRemoved, removed.Kind)
	assert.Equal(t, 11, removed.OldLine)
	assert.Equal(t, 0, removed.NewLine)
	assert.Equal(t, "-const token = req.query.token;", removed.Raw)

	// Addition only advances the new counter
	added := first.Lines[2]
	assert.Equal(t, KindAdded, added.Kind)
	assert.Equal(t, 11, added.NewLine)
	assert.Equal(t, 0, added.OldLine)
	assert.Equal(t, "const token = req.headers.authorization;", added.Content)

	second := fd.Hunks[1]
	assert.Equal(t, 31, second.NewStart)
	require.Len(t, second.Lines, 3)
	assert.Equal(t, 32, second.Lines[2].NewLine)
}

func TestParseEdgeCases(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		fd := Parse("")
		assert.Empty(t, fd.Hunks)
	})

	t.Run("no hunks", func(t *testing.T) {
		fd := Parse("diff --git a/x b/x\nindex 1..2 100644\n--- a/x\n+++ b/x\n")
		assert.Empty(t, fd.Hunks)
		assert.Equal(t, "x", fd.Path)
	})

	t.Run("lines before first hunk ignored", func(t *testing.T) {
		fd := Parse("stray line\n@@ -1,1 +1,1 @@\n context\n")
		require.Len(t, fd.Hunks, 1)
		assert.Len(t, fd.Hunks[0].Lines, 1)
	})

	t.Run("no newline marker skipped", func(t *testing.T) {
		fd := Parse("@@ -1,1 +1,1 @@\n-old\n+new\n\\ No newline at end of file\n")
		require.Len(t, fd.Hunks, 1)
		assert.Len(t, fd.Hunks[0].Lines, 2)
	})

	t.Run("malformed hunk header skipped", func(t *testing.T) {
		fd := Parse("@@ bogus @@\n+orphan\n@@ -1,1 +1,1 @@\n+kept\n")
		require.Len(t, fd.Hunks, 1)
		require.Len(t, fd.Hunks[0].Lines, 1)
		assert.Equal(t, "kept", fd.Hunks[0].Lines[0].Content)
	})

	t.Run("hunk without count defaults to one", func(t *testing.T) {
		fd := Parse("@@ -5 +7 @@\n+only\n")
		require.Len(t, fd.Hunks, 1)
		assert.Equal(t, 7, fd.Hunks[0].NewStart)
		assert.Equal(t, 1, fd.Hunks[0].NewLines)
		assert.Equal(t, 7, fd.Hunks[0].Lines[0].NewLine)
	})
}

func TestSplitByFile(t *testing.T) {
	prDiff := `diff --git a/src/a.ts b/src/a.ts
--- a/src/a.ts
+++ b/src/a.ts
@@ -1,1 +1,1 @@
-old a
+new a
diff --git a/src/b.ts b/src/b.ts
--- a/src/b.ts
+++ b/src/b.ts
@@ -1,1 +1,1 @@
-old b
+new b
diff --git a/gone.ts b/gone.ts
--- a/gone.ts
+++ /dev/null
@@ -1,1 +0,0 @@
-deleted
`
	files := SplitByFile(prDiff)
	require.Len(t, files, 3)
	assert.Contains(t, files, "src/a.ts")
	assert.Contains(t, files, "src/b.ts")
	// Deleted file keys off the old-side path
	assert.Contains(t, files, "gone.ts")
	assert.Contains(t, files["src/b.ts"], "+new b")
	assert.NotContains(t, files["src/b.ts"], "new a")

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SplitByFile("  \n"))
	})

	t.Run("without git headers", func(t *testing.T) {
		raw := `--- a/src/a.ts
+++ b/src/a.ts
@@ -1,2 +1,1 @@
 keep
--- not a header, removed line
@@ -5,1 +5,1 @@
-old
+new
--- a/src/b.ts
+++ b/src/b.ts
@@ -1,1 +1,2 @@
 keep
+added
`
		files := SplitByFile(raw)
		require.Len(t, files, 2)
		assert.Contains(t, files["src/a.ts"], "-- not a header")
		assert.Contains(t, files["src/b.ts"], "+added")
	})
}

func TestFileDiffLines(t *testing.T) {
	fd := Parse(samplePatch)
	lines := fd.Lines()
	assert.Len(t, lines, 8)
	assert.Equal(t, " clearSession();", lines[5].Raw)
}
