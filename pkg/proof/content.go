package proof

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/revtrust/revtrust/pkg/id"
)

// Kind names the three proof content kinds, matching the envelope frame's
// `<KIND>` markers (lowercased for in-body use).
type Kind string

const (
	KindTrust         Kind = "trust"
	KindPackageReview Kind = "package review"
	KindCodeReview    Kind = "code review"
)

// SchemaVersion is the integer schema marker emitted on every Common
// header. cargo-crev-style proofs use -1 for "unversioned reference
// implementation"; this core does the same.
const SchemaVersion = -1

// Common is the header shared by every proof content kind.
type Common struct {
	Kind    Kind
	Version int
	Date    time.Time // RFC3339 with a fixed (non-UTC-normalized) offset
	From    id.PublicId
}

// PackageId identifies a package within a source registry (e.g. crates.io).
type PackageId struct {
	Source string
	Name   string
}

// PackageVersionId identifies one version of a package.
type PackageVersionId struct {
	Id      PackageId
	Version *semver.Version
}

// Default revision/digest type strings, omitted on emit per spec §3.
const (
	DefaultRevisionType = "git"
	DefaultDigestType   = "blake2b"
)

// PackageInfo describes the concrete artifact a review or issue targets.
type PackageInfo struct {
	Id           PackageVersionId
	Revision     string
	RevisionType string
	Digest       []byte
	DigestType   string
}

// Issue is reported against a version and, by default, extends forward to
// all higher versions within Range until canceled by a matching Advisory.
type Issue struct {
	ID       string
	Severity Level
	Range    Range
	Comment  string
}

// Advisory is published from a version that fixes a problem, and implicitly
// reports the issue in prior versions within Range.
type Advisory struct {
	IDs      []string
	Severity Level
	Range    Range
	Comment  string
}

// OverrideItem requests that an identity's trust edges to the proof's
// common downstream target(s) be ignored.
type OverrideItem struct {
	Id      id.PublicId
	Comment string
}

// Validate checks the invariants shared by Issue/Advisory id lists.
func (i Issue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: issue id must not be empty", ErrValidation)
	}
	return nil
}

func (a Advisory) Validate() error {
	if len(a.IDs) == 0 {
		return fmt.Errorf("%w: advisory must name at least one id", ErrValidation)
	}
	for _, id := range a.IDs {
		if id == "" {
			return fmt.Errorf("%w: advisory id must not be empty", ErrValidation)
		}
	}
	return nil
}
