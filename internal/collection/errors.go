package collection

import "fmt"

// ConfigurationError reports missing or malformed collection metadata. The
// message already names the offending file.
type ConfigurationError struct {
	Path string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// ArtifactExistsError reports a collision with an existing path at the
// build output location.
type ArtifactExistsError struct {
	Path  string
	IsDir bool
}

func (e *ArtifactExistsError) Error() string {
	if e.IsDir {
		return fmt.Sprintf("the output collection artifact '%s' already exists, but is a directory - aborting", e.Path)
	}
	return fmt.Sprintf("the file '%s' already exists. You can use --force to re-create the collection artifact", e.Path)
}

// ChecksumMismatchError reports content whose digest disagrees with the
// expected value.
type ChecksumMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for '%s': expected %s, actual %s", e.Path, e.Expected, e.Actual)
}

// PathTraversalError reports a tar member whose name would place it outside
// the extraction root.
type PathTraversalError struct {
	Member    string
	OutputDir string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("cannot extract tar entry '%s' as it will be placed outside the collection directory '%s'", e.Member, e.OutputDir)
}

// MemberNotFoundError reports a missing member in a collection tar.
type MemberNotFoundError struct {
	Archive string
	Member  string
}

func (e *MemberNotFoundError) Error() string {
	return fmt.Sprintf("collection tar at '%s' does not contain the expected file '%s'", e.Archive, e.Member)
}

// MalformedArchiveError reports an embedded document that could not be
// parsed.
type MalformedArchiveError struct {
	Archive string
	Member  string
	Err     error
}

func (e *MalformedArchiveError) Error() string {
	return fmt.Sprintf("collection tar at '%s' contains a malformed '%s': %v", e.Archive, e.Member, e.Err)
}

func (e *MalformedArchiveError) Unwrap() error {
	return e.Err
}
