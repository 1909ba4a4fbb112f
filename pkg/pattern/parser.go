package pattern

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/glesirok/targetpattern/pkg/path"
)

// Suffixes accepted after ":" that select every target of a package.
const (
	suffixAll             = "all"
	suffixAllTargetsShort = "*"
	suffixAllTargets      = "all-targets"
)

var (
	// disallowedChar finds the first character outside the pattern alphabet.
	disallowedChar = regexp2.MustCompile(`[^A-Za-z0-9/:._@*\-]`, regexp2.None)
	// repositoryName is a workspace name: a letter, then word characters, "-" or ".".
	repositoryName = regexp2.MustCompile(`^[A-Za-z][A-Za-z0-9_.\-]*$`, regexp2.None)
	// directoryChars are the characters allowed inside a package path.
	directoryChars = regexp2.MustCompile(`^[A-Za-z0-9/._\-]*$`, regexp2.None)
)

var defaultParser = &Parser{}

// Parse parses raw with no working directory, so relative patterns are rooted
// at the repository root.
func Parse(raw string) (Pattern, error) {
	return defaultParser.Parse(raw)
}

// MustParse is like [Parse] but panics on error.
func MustParse(raw string) Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}

	return p
}

// Parser parses target patterns relative to a working directory.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	offset string
}

// NewParser returns a parser resolving relative patterns against offset, a
// package path such as "java/com/google".
func NewParser(offset string) (*Parser, error) {
	if err := checkCharacters(offset); err != nil {
		return nil, err
	}

	ok, err := directoryChars.MatchString(offset)
	if err != nil || !ok {
		return nil, malformed(offset, "invalid working directory")
	}

	return &Parser{offset: path.Normalize(offset)}, nil
}

// Offset returns the normalized working directory.
func (p *Parser) Offset() string {
	return p.offset
}

// Parse turns raw into a [Pattern], or fails with a *[MalformedPatternError].
//
// Supported forms:
//   - foo:bar, //foo:bar, @repo//foo:bar, //foo (SingleTarget)
//   - foo:all, foo:*, foo:all-targets (TargetsInPackage)
//   - foo/..., //..., foo/...:all, foo/...:* (TargetsBelowDirectory)
//   - java/com/google/foo/Bar.java (PathAsTarget)
func (p *Parser) Parse(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, malformed(raw, "the empty string is not a valid target")
	}

	if err := checkCharacters(raw); err != nil {
		return Pattern{}, err
	}

	rest := raw
	repo := DefaultRepository
	explicitRepo := strings.HasPrefix(rest, "@")
	if explicitRepo {
		var err error
		repo, rest, err = cutRepository(raw)
		if err != nil {
			return Pattern{}, err
		}
	}

	pat := Pattern{
		Original:   raw,
		Repository: repo,
		Absolute:   strings.HasPrefix(rest, "//"),
	}

	if pat.Absolute {
		rest = rest[2:]
	} else {
		if strings.HasPrefix(rest, path.Separator) {
			return Pattern{}, malformed(raw, "not a relative path or label")
		}
		pat.Offset = p.offset
		rest = p.absolutize(rest)
	}

	pathPart, suffix, hasColon := cutLast(rest, ":")
	if hasColon && suffix == "" {
		return Pattern{}, malformed(raw, "empty target name after ':'")
	}

	if pathPart == path.Recursive || strings.HasSuffix(pathPart, path.Separator+path.Recursive) {
		return p.belowDirectory(pat, strings.TrimSuffix(pathPart, path.Recursive), suffix)
	}

	dir, err := cleanDirectory(raw, pathPart)
	if err != nil {
		return Pattern{}, err
	}
	pat.Directory = dir

	switch suffix {
	case suffixAll:
		pat.Type = TargetsInPackage
		pat.RulesOnly = true
		return pat, nil
	case suffixAllTargetsShort, suffixAllTargets:
		pat.Type = TargetsInPackage
		return pat, nil
	}

	if explicitRepo || pat.Absolute || hasColon {
		name := suffix
		if !hasColon {
			name = path.Base(dir)
		}
		if err := checkTargetName(raw, name); err != nil {
			return Pattern{}, err
		}
		pat.Type = SingleTarget
		pat.TargetName = name
		return pat, nil
	}

	if dir == "" {
		return Pattern{}, malformed(raw, "path is empty after normalization")
	}
	pat.Type = PathAsTarget
	pat.TargetName = dir

	return pat, nil
}

func (p *Parser) belowDirectory(pat Pattern, dirPart, suffix string) (Pattern, error) {
	switch suffix {
	case "", suffixAll:
		pat.RulesOnly = true
	case suffixAllTargetsShort, suffixAllTargets:
	default:
		return Pattern{}, malformed(pat.Original, "target name %q not allowed after /...", suffix)
	}

	dir, err := cleanDirectory(pat.Original, strings.TrimSuffix(dirPart, path.Separator))
	if err != nil {
		return Pattern{}, err
	}

	pat.Type = TargetsBelowDirectory
	pat.Directory = dir

	return pat, nil
}

// absolutize joins a relative pattern onto the working directory.
func (p *Parser) absolutize(rest string) string {
	if p.offset == "" {
		return rest
	}

	if strings.HasPrefix(rest, ":") {
		return p.offset + rest
	}

	return p.offset + path.Separator + rest
}

// cutRepository splits "@name//rest" into the repository and "//rest".
func cutRepository(raw string) (Repository, string, error) {
	i := strings.Index(raw, "//")
	if i < 0 {
		return "", "", malformed(raw, "couldn't find package in target")
	}

	name := raw[1:i]
	if name == "" {
		return "", "", malformed(raw, "empty repository name after '@'")
	}

	ok, err := repositoryName.MatchString(name)
	if err != nil || !ok {
		return "", "", malformed(raw, "invalid repository name %q", name)
	}

	return Repository(name), raw[i:], nil
}

// checkCharacters rejects anything outside the pattern alphabet.
func checkCharacters(raw string) error {
	m, err := disallowedChar.FindStringMatch(raw)
	if err != nil {
		return malformed(raw, "%v", err)
	}

	if m != nil {
		return malformed(raw, "disallowed character %q at position %d", m.String(), m.Index)
	}

	return nil
}

// cleanDirectory validates and normalizes the package part of a pattern.
func cleanDirectory(raw, dir string) (string, error) {
	ok, err := directoryChars.MatchString(dir)
	if err != nil || !ok {
		return "", malformed(raw, "invalid package path %q", dir)
	}

	for _, seg := range path.Split(dir) {
		if path.Classify(seg) == path.SegmentTypeRecursive {
			return "", malformed(raw, "'...' is only allowed as the last path segment")
		}
	}

	return path.Normalize(dir), nil
}

// checkTargetName validates an explicit or implicit target name.
func checkTargetName(raw, name string) error {
	if name == "" {
		return malformed(raw, "missing target name")
	}

	if strings.ContainsAny(name, "*@") {
		return malformed(raw, "invalid target name %q", name)
	}

	if strings.HasPrefix(name, path.Separator) || strings.HasSuffix(name, path.Separator) {
		return malformed(raw, "target name %q must not start or end with '/'", name)
	}

	for _, seg := range strings.Split(name, path.Separator) {
		switch path.Classify(seg) {
		case path.SegmentTypeEmpty:
			return malformed(raw, "target name %q contains an empty segment", name)
		case path.SegmentTypeCurrent, path.SegmentTypeParent, path.SegmentTypeRecursive:
			return malformed(raw, "target name %q contains a %q segment", name, seg)
		}
	}

	return nil
}

// cutLast splits s around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}

	return s[:i], s[i+len(sep):], true
}
