package proofdb

import (
	"crypto/ed25519"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
)

// Signature is a fixed-size, comparable rendering of an Ed25519 signature,
// usable as a map key (raw []byte signatures are not comparable).
type Signature [ed25519.SignatureSize]byte

// SigFromBytes converts a raw signature to its comparable form.
func SigFromBytes(b []byte) Signature {
	var s Signature
	copy(s[:], b)
	return s
}

// EdgeKey identifies a trust edge: (from.id, to.id), spec §3's "Trust edge"
// logical-update key.
type EdgeKey struct {
	From id.Id
	To   id.Id
}

// PackageIdKey is the comparable form of proof.PackageId.
type PackageIdKey struct {
	Source string
	Name   string
}

func packageIdKey(p proof.PackageId) PackageIdKey {
	return PackageIdKey{Source: p.Source, Name: p.Name}
}

// PackageVersionKey is the comparable form of proof.PackageVersionId.
type PackageVersionKey struct {
	PackageIdKey
	Version string
}

func packageVersionKey(p proof.PackageVersionId) PackageVersionKey {
	return PackageVersionKey{PackageIdKey: packageIdKey(p.Id), Version: p.Version.String()}
}

// ReviewKey identifies a package review: (from.id, source, name, version),
// spec §3's "Package review" logical-update key.
type ReviewKey struct {
	From id.Id
	PackageVersionKey
}

// AuthorPackageKey identifies a per-author, per-package logical fact:
// alternatives or flags (spec §3).
type AuthorPackageKey struct {
	From id.Id
	PackageIdKey
}
