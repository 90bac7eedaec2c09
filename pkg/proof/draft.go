package proof

// Draft types expose only the mutable fields a reviewer edits by hand,
// mirroring original_source's crev-data "editable unsigned view"
// (proof/trust.rs's TrustDraft, proof/review/package.rs's and
// proof/review/code.rs's Draft). The core itself never prompts a user —
// that's a future CLI editor's job — but it owns the round-trip between a
// full content value and its draft projection, since both live beside the
// content type they edit.

// TrustDraft is the editable subset of a TrustProof.
type TrustDraft struct {
	Trust   TrustLevel
	Comment string
}

// ToDraft projects a TrustProof down to its editable fields.
func (t *TrustProof) ToDraft() TrustDraft {
	return TrustDraft{Trust: t.Trust, Comment: t.Comment}
}

// ApplyDraft returns a copy of t with d's edits applied, re-validated.
func (t *TrustProof) ApplyDraft(d TrustDraft) (*TrustProof, error) {
	next := *t
	next.Trust = d.Trust
	next.Comment = d.Comment
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// PackageReviewDraft is the editable subset of a PackageReview: the rating,
// issue/advisory reports, and comment. Package coordinates, digest, and
// diff base are fixed at creation time and are not part of the draft.
type PackageReviewDraft struct {
	Review     ReviewRating
	Issues     []Issue
	Advisories []Advisory
	Comment    string
}

// ToDraft projects a PackageReview down to its editable fields.
func (p *PackageReview) ToDraft() PackageReviewDraft {
	return PackageReviewDraft{
		Review:     p.Review,
		Issues:     append([]Issue(nil), p.Issues...),
		Advisories: append([]Advisory(nil), p.Advisories...),
		Comment:    p.Comment,
	}
}

// ApplyDraft returns a copy of p with d's edits applied, re-validated.
func (p *PackageReview) ApplyDraft(d PackageReviewDraft) (*PackageReview, error) {
	next := *p
	next.Review = d.Review
	next.Issues = d.Issues
	next.Advisories = d.Advisories
	next.Comment = d.Comment
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// CodeReviewDraft is the editable subset of a CodeReview.
type CodeReviewDraft struct {
	Review  ReviewRating
	Comment string
}

// ToDraft projects a CodeReview down to its editable fields.
func (c *CodeReview) ToDraft() CodeReviewDraft {
	return CodeReviewDraft{Review: c.Review, Comment: c.Comment}
}

// ApplyDraft returns a copy of c with d's edits applied, re-validated.
func (c *CodeReview) ApplyDraft(d CodeReviewDraft) (*CodeReview, error) {
	next := *c
	next.Review = d.Review
	next.Comment = d.Comment
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}
