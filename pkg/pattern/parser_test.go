package pattern_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glesirok/targetpattern/pkg/pattern"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		raw  string
		want pattern.Pattern
	}{
		"relative single target": {
			raw: "foo:bar",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "foo",
				TargetName: "bar",
			},
		},
		"relative all rules": {
			raw: "foo:all",
			want: pattern.Pattern{
				Type:      pattern.TargetsInPackage,
				Directory: "foo",
				RulesOnly: true,
			},
		},
		"relative recursive with all": {
			raw: "foo/...:all",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				Directory: "foo",
				RulesOnly: true,
			},
		},
		"relative star": {
			raw: "foo:*",
			want: pattern.Pattern{
				Type:      pattern.TargetsInPackage,
				Directory: "foo",
			},
		},
		"relative all-targets": {
			raw: "foo:all-targets",
			want: pattern.Pattern{
				Type:      pattern.TargetsInPackage,
				Directory: "foo",
			},
		},
		"absolute implicit name": {
			raw: "//foo",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "foo",
				TargetName: "foo",
				Absolute:   true,
			},
		},
		"absolute explicit name": {
			raw: "//foo:bar",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "foo",
				TargetName: "bar",
				Absolute:   true,
			},
		},
		"absolute all": {
			raw: "//foo:all",
			want: pattern.Pattern{
				Type:      pattern.TargetsInPackage,
				Directory: "foo",
				Absolute:  true,
				RulesOnly: true,
			},
		},
		"absolute package named all": {
			raw: "//foo/all",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "foo/all",
				TargetName: "all",
				Absolute:   true,
			},
		},
		"file path": {
			raw: "java/com/google/foo/Bar.java",
			want: pattern.Pattern{
				Type:       pattern.PathAsTarget,
				Directory:  "java/com/google/foo/Bar.java",
				TargetName: "java/com/google/foo/Bar.java",
			},
		},
		"absolute recursive": {
			raw: "//foo/...",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				Directory: "foo",
				Absolute:  true,
				RulesOnly: true,
			},
		},
		"absolute recursive with all": {
			raw: "//foo/...:all",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				Directory: "foo",
				Absolute:  true,
				RulesOnly: true,
			},
		},
		"absolute recursive all targets": {
			raw: "//foo/...:*",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				Directory: "foo",
				Absolute:  true,
			},
		},
		"root recursive": {
			raw: "//...",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				Absolute:  true,
				RulesOnly: true,
			},
		},
		"relative root recursive": {
			raw: "...",
			want: pattern.Pattern{
				Type:      pattern.TargetsBelowDirectory,
				RulesOnly: true,
			},
		},
		"repository single target": {
			raw: "@repo//foo:bar",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Repository: "repo",
				Directory:  "foo",
				TargetName: "bar",
				Absolute:   true,
			},
		},
		"repository all": {
			raw: "@repo//foo:all",
			want: pattern.Pattern{
				Type:       pattern.TargetsInPackage,
				Repository: "repo",
				Directory:  "foo",
				Absolute:   true,
				RulesOnly:  true,
			},
		},
		"repository root package": {
			raw: "@repo//:bar",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Repository: "repo",
				TargetName: "bar",
				Absolute:   true,
			},
		},
		"normalized directory": {
			raw: "//a//b/./c/../d:e",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "a/b/d",
				TargetName: "e",
				Absolute:   true,
			},
		},
		"leading parent kept": {
			raw: "../a:b",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "../a",
				TargetName: "b",
			},
		},
		"target name with slash": {
			raw: "//foo:bar/baz.txt",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "foo",
				TargetName: "bar/baz.txt",
				Absolute:   true,
			},
		},
		"bare word is a path": {
			raw: "foo",
			want: pattern.Pattern{
				Type:       pattern.PathAsTarget,
				Directory:  "foo",
				TargetName: "foo",
			},
		},
		"repository package named all-targets": {
			raw: "@r//x/all-targets",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Repository: "r",
				Directory:  "x/all-targets",
				TargetName: "all-targets",
				Absolute:   true,
			},
		},
		"implicit name all-targets at root": {
			raw: "//all-targets",
			want: pattern.Pattern{
				Type:       pattern.SingleTarget,
				Directory:  "all-targets",
				TargetName: "all-targets",
				Absolute:   true,
			},
		},
		"embedded dots stay": {
			raw: "a/b/c...",
			want: pattern.Pattern{
				Type:       pattern.PathAsTarget,
				Directory:  "a/b/c...",
				TargetName: "a/b/c...",
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := pattern.Parse(tc.raw)
			require.NoError(t, err)

			tc.want.Original = tc.raw
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.raw, got.Original)

			again, err := pattern.Parse(got.String())
			require.NoError(t, err, "rendered as %q", got.String())
			assert.Equal(t, got.Type, again.Type, "rendered as %q", got.String())
			assert.Equal(t, got.Directory, again.Directory, "rendered as %q", got.String())
			assert.Equal(t, got.TargetName, again.TargetName, "rendered as %q", got.String())
			assert.Equal(t, got.RulesOnly, again.RulesOnly, "rendered as %q", got.String())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		raw        string
		wantReason string
	}{
		"disallowed symbols":           {raw: "Bar&&&java", wantReason: "disallowed character"},
		"control character":            {raw: "foo\x00bar", wantReason: "disallowed character"},
		"space":                        {raw: "//foo bar", wantReason: "disallowed character"},
		"empty":                        {raw: "", wantReason: "empty string"},
		"empty repository name":        {raw: "@//foo:bar", wantReason: "empty repository name"},
		"repository without package":   {raw: "@repo", wantReason: "couldn't find package"},
		"repository starts with digit": {raw: "@1repo//foo", wantReason: "invalid repository name"},
		"empty suffix":                 {raw: "foo:", wantReason: "empty target name"},
		"name after recursion":         {raw: "foo/...:bar", wantReason: "not allowed after /..."},
		"recursion in the middle":      {raw: "foo/.../bar", wantReason: "last path segment"},
		"root without name":            {raw: "//", wantReason: "missing target name"},
		"repository root without name": {raw: "@repo//", wantReason: "missing target name"},
		"leading slash":                {raw: "/foo", wantReason: "not a relative path"},
		"colon in package":             {raw: "//foo:bar:baz", wantReason: "invalid package path"},
		"star in package":              {raw: "//fo*o:bar", wantReason: "invalid package path"},
		"parent target name":           {raw: "//foo:..", wantReason: "segment"},
		"trailing slash target name":   {raw: "//foo:bar/", wantReason: "must not start or end"},
		"empty target segment":         {raw: "//foo:a//b", wantReason: "empty segment"},
		"dot path":                     {raw: ".", wantReason: "empty after normalization"},
		"implicit parent name":         {raw: "//..", wantReason: "segment"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := pattern.Parse(tc.raw)
			require.Error(t, err)
			require.ErrorIs(t, err, pattern.ErrMalformedPattern)
			assert.Equal(t, pattern.Pattern{}, got)

			var mpe *pattern.MalformedPatternError
			require.True(t, errors.As(err, &mpe))
			assert.Equal(t, tc.raw, mpe.Pattern)
			assert.Contains(t, mpe.Reason, tc.wantReason)
		})
	}
}

func TestParserOffset(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		offset    string
		raw       string
		wantType  pattern.Type
		wantDir   string
		wantName  string
		wantRules bool
	}{
		"single target below offset": {
			offset: "foo", raw: "bar:baz",
			wantType: pattern.SingleTarget, wantDir: "foo/bar", wantName: "baz",
		},
		"target in offset package": {
			offset: "foo", raw: ":baz",
			wantType: pattern.SingleTarget, wantDir: "foo", wantName: "baz",
		},
		"parent cancels offset": {
			offset: "a/b", raw: "../c/...",
			wantType: pattern.TargetsBelowDirectory, wantDir: "a/c", wantRules: true,
		},
		"parents escape offset": {
			offset: "a", raw: "../../c:all",
			wantType: pattern.TargetsInPackage, wantDir: "../c", wantRules: true,
		},
		"absolute ignores offset": {
			offset: "a/b", raw: "//c:d",
			wantType: pattern.SingleTarget, wantDir: "c", wantName: "d",
		},
		"offset recursion": {
			offset: "a/b", raw: "...",
			wantType: pattern.TargetsBelowDirectory, wantDir: "a/b", wantRules: true,
		},
		"path below offset": {
			offset: "java", raw: "com/Foo.java",
			wantType: pattern.PathAsTarget, wantDir: "java/com/Foo.java", wantName: "java/com/Foo.java",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := pattern.NewParser(tc.offset)
			require.NoError(t, err)

			got, err := p.Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, got.Type)
			assert.Equal(t, tc.wantDir, got.Directory)
			assert.Equal(t, tc.wantName, got.TargetName)
			assert.Equal(t, tc.wantRules, got.RulesOnly)
			assert.Equal(t, tc.raw, got.Original)
			if got.Absolute {
				assert.Empty(t, got.Offset)
			} else {
				assert.Equal(t, p.Offset(), got.Offset)
			}
		})
	}
}

func TestNewParserInvalidOffset(t *testing.T) {
	t.Parallel()

	_, err := pattern.NewParser("foo:bar")
	require.ErrorIs(t, err, pattern.ErrMalformedPattern)

	_, err = pattern.NewParser("foo bar")
	require.ErrorIs(t, err, pattern.ErrMalformedPattern)

	p, err := pattern.NewParser("./foo//bar/")
	require.NoError(t, err)
	assert.Equal(t, "foo/bar", p.Offset())
}

func TestParseIsPure(t *testing.T) {
	t.Parallel()

	raws := []string{"//foo/...", "foo:bar", "@repo//x:all", "a/b/C.java"}

	var wg sync.WaitGroup
	results := make([][]pattern.Pattern, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, raw := range raws {
				results[i] = append(results[i], pattern.MustParse(raw))
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		pattern.MustParse("Bar&&&java")
	})
}

func TestPatternEqual(t *testing.T) {
	t.Parallel()

	a := pattern.MustParse("//a//b:c")
	b := pattern.MustParse("//a/b:c")
	assert.NotEqual(t, a, b)
	assert.True(t, a.Equal(b))

	c := pattern.MustParse("a/b:c")
	assert.False(t, a.Equal(c), "absolute and relative forms differ")
}

func TestPatternString(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"foo:bar":               "//foo:bar",
		"//foo":                 "//foo:foo",
		"@repo//foo:all":        "@repo//foo:all",
		"foo:all-targets":       "//foo:*",
		"//foo/...":             "//foo/...",
		"//foo/...:all":         "//foo/...",
		"//foo/...:all-targets": "//foo/...:*",
		"//...":                 "//...",
		"@r//...:*":             "@r//...:*",
		"a/./b/C.java":          "a/b/C.java",
		"@repo//:bar":           "@repo//:bar",
		"//all":                 "//all",
		"@r//x/all-targets":     "@r//x/all-targets",
		"//foo/all:all":         "//foo/all:all",
	}

	for raw, want := range tcs {
		assert.Equal(t, want, pattern.MustParse(raw).String(), "pattern %q", raw)
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SingleTarget", pattern.SingleTarget.String())
	assert.Equal(t, "PathAsTarget", pattern.PathAsTarget.String())
	assert.Equal(t, "TargetsInPackage", pattern.TargetsInPackage.String())
	assert.Equal(t, "TargetsBelowDirectory", pattern.TargetsBelowDirectory.String())
	assert.Equal(t, "Unknown", pattern.TypeUnknown.String())

	text, err := pattern.TargetsBelowDirectory.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TargetsBelowDirectory", string(text))
}

func TestRepository(t *testing.T) {
	t.Parallel()

	assert.True(t, pattern.DefaultRepository.IsDefault())
	assert.Equal(t, "", pattern.DefaultRepository.String())

	p := pattern.MustParse("@my_repo//foo:bar")
	assert.False(t, p.Repository.IsDefault())
	assert.Equal(t, "my_repo", p.Repository.Name())
	assert.Equal(t, "@my_repo", p.Repository.String())
}
