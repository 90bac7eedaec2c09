package proof

import (
	"fmt"

	"github.com/revtrust/revtrust/pkg/id"
)

// Proof is the tagged variant over the three content kinds: a shared Common
// header plus kind-specific fields. New kinds extend this interface rather
// than an inheritance hierarchy, matching spec §9's "Content hierarchy"
// design note.
type Proof interface {
	Kind() Kind
	GetCommon() Common
	Validate() error
}

// TrustProof asserts trust from Common.From.Id to every id in Ids, at the
// declared Trust level, with optional overrides requesting that other
// identities' edges to the common downstream target be ignored.
type TrustProof struct {
	Common
	Ids      []id.PublicId
	Trust    TrustLevel
	Override []OverrideItem
	Comment  string
}

func (t *TrustProof) Kind() Kind        { return KindTrust }
func (t *TrustProof) GetCommon() Common { return t.Common }

func (t *TrustProof) Validate() error {
	if t.Common.Kind != "" && t.Common.Kind != KindTrust {
		return fmt.Errorf("%w: kind %q inside body disagrees with trust proof", ErrValidation, t.Common.Kind)
	}
	return nil
}

// ReviewRating is the shared thoroughness/understanding/rating triple used
// by both PackageReview and CodeReview.
type ReviewRating struct {
	Thoroughness  Level
	Understanding Level
	Rating        Rating
}

// Flags carries reviewer-asserted package flags (e.g. "unmaintained").
type Flags struct {
	Unmaintained bool
}

// PackageReview reviews one version of one package, optionally relative to
// a diff base, and carries issue reports, fixing advisories, alternative
// suggestions, and flags.
type PackageReview struct {
	Common
	Package      PackageInfo
	DiffBase     *PackageInfo
	Review       ReviewRating
	Issues       []Issue
	Advisories   []Advisory
	Alternatives []PackageId
	Flags        Flags
	Override     []OverrideItem
	Comment      string
}

func (p *PackageReview) Kind() Kind        { return KindPackageReview }
func (p *PackageReview) GetCommon() Common { return p.Common }

func (p *PackageReview) Validate() error {
	if p.Common.Kind != "" && p.Common.Kind != KindPackageReview {
		return fmt.Errorf("%w: kind %q inside body disagrees with package review proof", ErrValidation, p.Common.Kind)
	}
	for _, iss := range p.Issues {
		if err := iss.Validate(); err != nil {
			return err
		}
	}
	for _, adv := range p.Advisories {
		if err := adv.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FileDigest is one file's content digest within a CodeReview.
type FileDigest struct {
	Path       string
	Digest     []byte
	DigestType string
}

// ProjectInfo identifies the in-tree project a CodeReview covers.
type ProjectInfo struct {
	Id     string
	Source string
}

// CodeReview reviews a list of files with per-file digests. It is not
// required by the core verification queries (spec §3), but participates in
// the same database/trust machinery as PackageReview.
type CodeReview struct {
	Common
	Project ProjectInfo
	Files   []FileDigest
	Review  ReviewRating
	Comment string
}

func (c *CodeReview) Kind() Kind        { return KindCodeReview }
func (c *CodeReview) GetCommon() Common { return c.Common }

func (c *CodeReview) Validate() error {
	if c.Common.Kind != "" && c.Common.Kind != KindCodeReview {
		return fmt.Errorf("%w: kind %q inside body disagrees with code review proof", ErrValidation, c.Common.Kind)
	}
	return nil
}
