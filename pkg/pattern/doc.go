/*
Package pattern parses build target patterns into canonical values.

A target pattern designates one or more targets in a repository-partitioned
source tree. Every pattern is classified into one of four shapes:

	foo:bar, //foo:bar, @repo//foo:bar, //foo   SingleTarget
	java/com/google/foo/Bar.java               PathAsTarget
	foo:all, foo:*, foo:all-targets            TargetsInPackage
	foo/..., //..., foo/...:all, foo/...:*     TargetsBelowDirectory

Basic flow:
  - parse a pattern (`Parse`, or `NewParser(offset).Parse` for a working directory)
  - inspect the resulting `Pattern` (type, repository, directory, target)
  - compare recursive patterns (`Relate` / `DirectoryContains`)

Parsing is lexical: it never checks that the named package or target exists.
Listing the targets a pattern designates is left to the caller's package
provider, which receives `Pattern.Repository` and `Pattern.Directory`.
*/
package pattern
