package proof

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/revtrust/revtrust/pkg/id"
)

type wirePublicId struct {
	IdType  string `yaml:"id-type,omitempty"`
	Id      string `yaml:"id"`
	Url     string `yaml:"url,omitempty"`
	UrlType string `yaml:"url-type,omitempty"`
}

type wirePackageId struct {
	Source string `yaml:"source"`
	Name   string `yaml:"name"`
}

type wirePackageInfo struct {
	Source       string `yaml:"source"`
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Digest       string `yaml:"digest"`
	DigestType   string `yaml:"digest-type,omitempty"`
	Revision     string `yaml:"revision,omitempty"`
	RevisionType string `yaml:"revision-type,omitempty"`
}

type wireIssue struct {
	Id       string `yaml:"id"`
	Severity string `yaml:"severity"`
	Range    string `yaml:"range,omitempty"`
	Comment  string `yaml:"comment,omitempty"`
}

type wireAdvisory struct {
	Ids      []string `yaml:"ids"`
	Severity string   `yaml:"severity"`
	Range    string   `yaml:"range,omitempty"`
	Comment  string   `yaml:"comment,omitempty"`
}

type wireOverride struct {
	Id      wirePublicId `yaml:"id"`
	Comment string       `yaml:"comment,omitempty"`
}

type wireReview struct {
	Thoroughness  string `yaml:"thoroughness"`
	Understanding string `yaml:"understanding"`
	Rating        string `yaml:"rating"`
}

type wireFlags struct {
	Unmaintained bool `yaml:"unmaintained,omitempty"`
}

type wireTrust struct {
	Kind     string         `yaml:"kind,omitempty"`
	Version  int            `yaml:"version"`
	Date     string         `yaml:"date"`
	From     wirePublicId   `yaml:"from"`
	Ids      []wirePublicId `yaml:"ids"`
	Trust    string         `yaml:"trust"`
	Override []wireOverride `yaml:"override,omitempty"`
	Comment  string         `yaml:"comment,omitempty"`
}

type wirePackageReview struct {
	Kind         string           `yaml:"kind,omitempty"`
	Version      int              `yaml:"version"`
	Date         string           `yaml:"date"`
	From         wirePublicId     `yaml:"from"`
	Package      wirePackageInfo  `yaml:"package"`
	DiffBase     *wirePackageInfo `yaml:"diff-base,omitempty"`
	Review       wireReview       `yaml:"review"`
	Issues       []wireIssue      `yaml:"issues,omitempty"`
	Advisories   []wireAdvisory   `yaml:"advisories,omitempty"`
	Alternatives []wirePackageId  `yaml:"alternatives,omitempty"`
	Flags        wireFlags        `yaml:"flags,omitempty"`
	Override     []wireOverride   `yaml:"override,omitempty"`
	Comment      string           `yaml:"comment,omitempty"`
}

type wireFile struct {
	Path       string `yaml:"path"`
	Digest     string `yaml:"digest"`
	DigestType string `yaml:"digest-type,omitempty"`
}

type wireProject struct {
	Id     string `yaml:"id"`
	Source string `yaml:"source,omitempty"`
}

type wireCodeReview struct {
	Kind    string       `yaml:"kind,omitempty"`
	Version int          `yaml:"version"`
	Date    string       `yaml:"date"`
	From    wirePublicId `yaml:"from"`
	Project wireProject  `yaml:"project"`
	Files   []wireFile   `yaml:"files"`
	Review  wireReview   `yaml:"review"`
	Comment string       `yaml:"comment,omitempty"`
}

func toPublicId(w wirePublicId) (id.PublicId, error) {
	pid, err := id.ParseId(w.Id)
	if err != nil {
		return id.PublicId{}, err
	}
	return id.PublicId{Id: pid, Url: w.Url}, nil
}

func toDate(s string) (time.Time, error) {
	t, err := time.Parse(rfc3339FixedOffset, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("proof: parsing date %q: %w", s, err)
	}
	return t, nil
}

func toPackageInfo(w wirePackageInfo) (PackageInfo, error) {
	v, err := semver.NewVersion(w.Version)
	if err != nil {
		return PackageInfo{}, fmt.Errorf("proof: parsing package version %q: %w", w.Version, err)
	}
	digest, err := base64.StdEncoding.DecodeString(w.Digest)
	if err != nil {
		return PackageInfo{}, fmt.Errorf("proof: parsing package digest: %w", err)
	}
	digestType := w.DigestType
	if digestType == "" {
		digestType = DefaultDigestType
	}
	revType := w.RevisionType
	if revType == "" {
		revType = DefaultRevisionType
	}
	return PackageInfo{
		Id: PackageVersionId{
			Id:      PackageId{Source: w.Source, Name: w.Name},
			Version: v,
		},
		Revision:     w.Revision,
		RevisionType: revType,
		Digest:       digest,
		DigestType:   digestType,
	}, nil
}

func toIssue(w wireIssue) (Issue, error) {
	sev, err := ParseLevel(w.Severity)
	if err != nil {
		return Issue{}, err
	}
	rng := RangeAll
	if w.Range != "" {
		rng, err = ParseRange(w.Range)
		if err != nil {
			return Issue{}, err
		}
	}
	iss := Issue{ID: w.Id, Severity: sev, Range: rng, Comment: w.Comment}
	if err := iss.Validate(); err != nil {
		return Issue{}, err
	}
	return iss, nil
}

func toAdvisory(w wireAdvisory) (Advisory, error) {
	sev, err := ParseLevel(w.Severity)
	if err != nil {
		return Advisory{}, err
	}
	rng := RangeAll
	if w.Range != "" {
		rng, err = ParseRange(w.Range)
		if err != nil {
			return Advisory{}, err
		}
	}
	adv := Advisory{IDs: w.Ids, Severity: sev, Range: rng, Comment: w.Comment}
	if err := adv.Validate(); err != nil {
		return Advisory{}, err
	}
	return adv, nil
}

func toOverride(w wireOverride) (OverrideItem, error) {
	pid, err := toPublicId(w.Id)
	if err != nil {
		return OverrideItem{}, err
	}
	return OverrideItem{Id: pid, Comment: w.Comment}, nil
}

func toReviewRating(w wireReview) (ReviewRating, error) {
	th, err := ParseLevel(w.Thoroughness)
	if err != nil {
		return ReviewRating{}, err
	}
	un, err := ParseLevel(w.Understanding)
	if err != nil {
		return ReviewRating{}, err
	}
	ra, err := ParseRating(w.Rating)
	if err != nil {
		return ReviewRating{}, err
	}
	return ReviewRating{Thoroughness: th, Understanding: un, Rating: ra}, nil
}

// ParseTrust parses a canonical Trust body, back-filling Kind from
// frameKind when the body omits it (legacy compatibility, spec §4.1).
func ParseTrust(body []byte, frameKind Kind) (*TrustProof, error) {
	var w wireTrust
	if err := yaml.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("proof: parsing trust body: %w", err)
	}
	kind, err := resolveKind(w.Kind, frameKind)
	if err != nil {
		return nil, err
	}
	from, err := toPublicId(w.From)
	if err != nil {
		return nil, err
	}
	date, err := toDate(w.Date)
	if err != nil {
		return nil, err
	}
	trustLevel, err := ParseTrustLevel(w.Trust)
	if err != nil {
		return nil, err
	}

	ids := make([]id.PublicId, len(w.Ids))
	for i, wp := range w.Ids {
		pid, err := toPublicId(wp)
		if err != nil {
			return nil, err
		}
		ids[i] = pid
	}
	overrides := make([]OverrideItem, len(w.Override))
	for i, wo := range w.Override {
		o, err := toOverride(wo)
		if err != nil {
			return nil, err
		}
		overrides[i] = o
	}

	t := &TrustProof{
		Common: Common{
			Kind:    kind,
			Version: w.Version,
			Date:    date,
			From:    from,
		},
		Ids:      ids,
		Trust:    trustLevel,
		Override: overrides,
		Comment:  w.Comment,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParsePackageReview parses a canonical PackageReview body.
func ParsePackageReview(body []byte, frameKind Kind) (*PackageReview, error) {
	var w wirePackageReview
	if err := yaml.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("proof: parsing package review body: %w", err)
	}
	kind, err := resolveKind(w.Kind, frameKind)
	if err != nil {
		return nil, err
	}
	from, err := toPublicId(w.From)
	if err != nil {
		return nil, err
	}
	date, err := toDate(w.Date)
	if err != nil {
		return nil, err
	}
	pkg, err := toPackageInfo(w.Package)
	if err != nil {
		return nil, err
	}
	var diffBase *PackageInfo
	if w.DiffBase != nil {
		db, err := toPackageInfo(*w.DiffBase)
		if err != nil {
			return nil, err
		}
		diffBase = &db
	}
	review, err := toReviewRating(w.Review)
	if err != nil {
		return nil, err
	}
	issues := make([]Issue, len(w.Issues))
	for i, wi := range w.Issues {
		iss, err := toIssue(wi)
		if err != nil {
			return nil, err
		}
		issues[i] = iss
	}
	advisories := make([]Advisory, len(w.Advisories))
	for i, wa := range w.Advisories {
		adv, err := toAdvisory(wa)
		if err != nil {
			return nil, err
		}
		advisories[i] = adv
	}
	alternatives := make([]PackageId, len(w.Alternatives))
	for i, wp := range w.Alternatives {
		alternatives[i] = PackageId{Source: wp.Source, Name: wp.Name}
	}
	overrides := make([]OverrideItem, len(w.Override))
	for i, wo := range w.Override {
		o, err := toOverride(wo)
		if err != nil {
			return nil, err
		}
		overrides[i] = o
	}

	p := &PackageReview{
		Common: Common{
			Kind:    kind,
			Version: w.Version,
			Date:    date,
			From:    from,
		},
		Package:      pkg,
		DiffBase:     diffBase,
		Review:       review,
		Issues:       issues,
		Advisories:   advisories,
		Alternatives: alternatives,
		Flags:        Flags{Unmaintained: w.Flags.Unmaintained},
		Override:     overrides,
		Comment:      w.Comment,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseCodeReview parses a canonical CodeReview body.
func ParseCodeReview(body []byte, frameKind Kind) (*CodeReview, error) {
	var w wireCodeReview
	if err := yaml.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("proof: parsing code review body: %w", err)
	}
	kind, err := resolveKind(w.Kind, frameKind)
	if err != nil {
		return nil, err
	}
	from, err := toPublicId(w.From)
	if err != nil {
		return nil, err
	}
	date, err := toDate(w.Date)
	if err != nil {
		return nil, err
	}
	review, err := toReviewRating(w.Review)
	if err != nil {
		return nil, err
	}
	files := make([]FileDigest, len(w.Files))
	for i, wf := range w.Files {
		digest, err := base64.StdEncoding.DecodeString(wf.Digest)
		if err != nil {
			return nil, fmt.Errorf("proof: parsing file digest: %w", err)
		}
		digestType := wf.DigestType
		if digestType == "" {
			digestType = DefaultDigestType
		}
		files[i] = FileDigest{Path: wf.Path, Digest: digest, DigestType: digestType}
	}

	c := &CodeReview{
		Common: Common{
			Kind:    kind,
			Version: w.Version,
			Date:    date,
			From:    from,
		},
		Project: ProjectInfo{Id: w.Project.Id, Source: w.Project.Source},
		Files:   files,
		Review:  review,
		Comment: w.Comment,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveKind implements the legacy back-fill rule: a body lacking `kind`
// is assigned the frame's kind; a body carrying a kind must agree with the
// frame.
func resolveKind(bodyKind string, frameKind Kind) (Kind, error) {
	if bodyKind == "" {
		return frameKind, nil
	}
	k := Kind(bodyKind)
	if k != frameKind {
		return "", fmt.Errorf("%w: body kind %q disagrees with envelope frame %q", ErrValidation, bodyKind, frameKind)
	}
	return k, nil
}

// Parse dispatches to the right kind-specific parser based on frameKind.
func Parse(frameKind Kind, body []byte) (Proof, error) {
	switch frameKind {
	case KindTrust:
		return ParseTrust(body, frameKind)
	case KindPackageReview:
		return ParsePackageReview(body, frameKind)
	case KindCodeReview:
		return ParseCodeReview(body, frameKind)
	default:
		return nil, fmt.Errorf("%w: unknown proof kind %q", ErrValidation, frameKind)
	}
}
