package proof

import (
	"encoding/base64"
	"strconv"

	"github.com/revtrust/revtrust/pkg/canon"
	"github.com/revtrust/revtrust/pkg/id"
)

// idTypeCrev is the fixed "id-type" tag every PublicId carries on the wire.
const idTypeCrev = "crev"

// urlTypeGit is the fixed "url-type" tag a non-empty url carries on the
// wire; the core doesn't interpret the transport, it just round-trips it.
const urlTypeGit = "git"

func publicIdMap(p id.PublicId) canon.Map {
	m := canon.Map{
		{Key: "id-type", Value: canon.Scalar{Raw: idTypeCrev}},
		{Key: "id", Value: canon.Str(p.Id.String())},
	}
	if p.Url != "" {
		m = append(m,
			canon.Field{Key: "url", Value: canon.Str(p.Url)},
			canon.Field{Key: "url-type", Value: canon.Scalar{Raw: urlTypeGit}},
		)
	}
	return m
}

func commonFields(c Common) []canon.Field {
	return []canon.Field{
		{Key: "kind", Value: canon.Scalar{Raw: string(c.Kind)}},
		{Key: "version", Value: canon.Scalar{Raw: strconv.Itoa(c.Version)}},
		{Key: "date", Value: canon.Str(c.Date.Format(rfc3339FixedOffset))},
		{Key: "from", Value: publicIdMap(c.From)},
	}
}

// rfc3339FixedOffset is RFC3339 with the offset the proof was signed at
// preserved exactly (no normalization to UTC), matching spec §3.
const rfc3339FixedOffset = "2006-01-02T15:04:05-07:00"

func packageIdMap(p PackageId) canon.Map {
	return canon.Map{
		{Key: "source", Value: canon.Str(p.Source)},
		{Key: "name", Value: canon.Str(p.Name)},
	}
}

func packageInfoMap(p PackageInfo) canon.Map {
	m := canon.Map{
		{Key: "source", Value: canon.Str(p.Id.Id.Source)},
		{Key: "name", Value: canon.Str(p.Id.Id.Name)},
		{Key: "version", Value: canon.Str(p.Id.Version.String())},
		{Key: "digest", Value: canon.Str(base64.StdEncoding.EncodeToString(p.Digest))},
		{Key: "digest-type", Value: canon.Scalar{Raw: p.DigestType}, Omit: p.DigestType == "" || p.DigestType == DefaultDigestType},
		{Key: "revision", Value: canon.Str(p.Revision), Omit: p.Revision == ""},
		{Key: "revision-type", Value: canon.Scalar{Raw: p.RevisionType}, Omit: p.RevisionType == "" || p.RevisionType == DefaultRevisionType},
	}
	return m
}

func issueMap(i Issue) canon.Map {
	return canon.Map{
		{Key: "id", Value: canon.Str(i.ID)},
		{Key: "severity", Value: canon.Scalar{Raw: i.Severity.String()}},
		{Key: "range", Value: canon.Scalar{Raw: i.Range.String()}, Omit: i.Range == RangeAll},
		{Key: "comment", Value: canon.Literal(i.Comment), Omit: i.Comment == ""},
	}
}

func advisoryMap(a Advisory) canon.Map {
	ids := make(canon.Seq, len(a.IDs))
	for i, s := range a.IDs {
		ids[i] = canon.Str(s)
	}
	return canon.Map{
		{Key: "ids", Value: ids},
		{Key: "severity", Value: canon.Scalar{Raw: a.Severity.String()}},
		{Key: "range", Value: canon.Scalar{Raw: a.Range.String()}, Omit: a.Range == RangeAll},
		{Key: "comment", Value: canon.Literal(a.Comment), Omit: a.Comment == ""},
	}
}

func overrideMap(o OverrideItem) canon.Map {
	return canon.Map{
		{Key: "id", Value: publicIdMap(o.Id)},
		{Key: "comment", Value: canon.Literal(o.Comment), Omit: o.Comment == ""},
	}
}

func overrideSeq(items []OverrideItem) canon.Seq {
	seq := make(canon.Seq, len(items))
	for i, o := range items {
		seq[i] = overrideMap(o)
	}
	return seq
}

// CanonicalFields implements the fixed schema-declaration-order emit for a
// Trust proof.
func (t *TrustProof) CanonicalFields() []canon.Field {
	ids := make(canon.Seq, len(t.Ids))
	for i, pid := range t.Ids {
		ids[i] = publicIdMap(pid)
	}
	fields := commonFields(t.Common)
	fields = append(fields,
		canon.Field{Key: "ids", Value: ids},
		canon.Field{Key: "trust", Value: canon.Scalar{Raw: t.Trust.String()}},
		canon.Field{Key: "override", Value: overrideSeq(t.Override), Omit: len(t.Override) == 0},
		canon.Field{Key: "comment", Value: canon.Literal(t.Comment), Omit: t.Comment == ""},
	)
	return fields
}

// CanonicalFields implements the fixed schema-declaration-order emit for a
// PackageReview.
func (p *PackageReview) CanonicalFields() []canon.Field {
	issues := make(canon.Seq, len(p.Issues))
	for i, iss := range p.Issues {
		issues[i] = issueMap(iss)
	}
	advisories := make(canon.Seq, len(p.Advisories))
	for i, adv := range p.Advisories {
		advisories[i] = advisoryMap(adv)
	}
	alternatives := make(canon.Seq, len(p.Alternatives))
	for i, alt := range p.Alternatives {
		alternatives[i] = packageIdMap(alt)
	}

	fields := commonFields(p.Common)
	fields = append(fields, canon.Field{Key: "package", Value: packageInfoMap(p.Package)})
	if p.DiffBase != nil {
		fields = append(fields, canon.Field{Key: "diff-base", Value: packageInfoMap(*p.DiffBase)})
	}
	fields = append(fields,
		canon.Field{Key: "review", Value: canon.Map{
			{Key: "thoroughness", Value: canon.Scalar{Raw: p.Review.Thoroughness.String()}},
			{Key: "understanding", Value: canon.Scalar{Raw: p.Review.Understanding.String()}},
			{Key: "rating", Value: canon.Scalar{Raw: p.Review.Rating.String()}},
		}},
		canon.Field{Key: "issues", Value: issues, Omit: len(issues) == 0},
		canon.Field{Key: "advisories", Value: advisories, Omit: len(advisories) == 0},
		canon.Field{Key: "alternatives", Value: alternatives, Omit: len(alternatives) == 0},
		canon.Field{Key: "flags", Value: canon.Map{
			{Key: "unmaintained", Value: canon.Scalar{Raw: strconv.FormatBool(p.Flags.Unmaintained)}},
		}, Omit: !p.Flags.Unmaintained},
		canon.Field{Key: "override", Value: overrideSeq(p.Override), Omit: len(p.Override) == 0},
		canon.Field{Key: "comment", Value: canon.Literal(p.Comment), Omit: p.Comment == ""},
	)
	return fields
}

// CanonicalFields implements the fixed schema-declaration-order emit for a
// CodeReview.
func (c *CodeReview) CanonicalFields() []canon.Field {
	files := make(canon.Seq, len(c.Files))
	for i, f := range c.Files {
		files[i] = canon.Map{
			{Key: "path", Value: canon.Str(f.Path)},
			{Key: "digest", Value: canon.Str(base64.StdEncoding.EncodeToString(f.Digest))},
			{Key: "digest-type", Value: canon.Scalar{Raw: f.DigestType}, Omit: f.DigestType == "" || f.DigestType == DefaultDigestType},
		}
	}

	fields := commonFields(c.Common)
	fields = append(fields,
		canon.Field{Key: "project", Value: canon.Map{
			{Key: "id", Value: canon.Str(c.Project.Id)},
			{Key: "source", Value: canon.Str(c.Project.Source), Omit: c.Project.Source == ""},
		}},
		canon.Field{Key: "files", Value: files},
		canon.Field{Key: "review", Value: canon.Map{
			{Key: "thoroughness", Value: canon.Scalar{Raw: c.Review.Thoroughness.String()}},
			{Key: "understanding", Value: canon.Scalar{Raw: c.Review.Understanding.String()}},
			{Key: "rating", Value: canon.Scalar{Raw: c.Review.Rating.String()}},
		}},
		canon.Field{Key: "comment", Value: canon.Literal(c.Comment), Omit: c.Comment == ""},
	)
	return fields
}
