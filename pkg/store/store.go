// Package store implements the on-disk proof layout (spec §6): a
// sanitized per-identity directory tree of append-only `.crev` files, one
// envelope appended per proof. Grounded on the teacher's
// pkg/store/audit_store.go (append-only entry log, open-append-close
// discipline per operation) adapted from an in-memory hash-chained log to
// a filesystem tree of envelope-concatenated files, since spec §5 requires
// no persistent file handles inside the core.
package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/revtrust/revtrust/pkg/envelope"
	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
)

// dirPerm and filePerm keep the store owner-only, matching the
// locked-identity file handling in pkg/id.
const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Sanitize deterministically maps an arbitrary identity label (a self-
// declared URL, or the id's base64 display form when no URL is known) to
// a filesystem-safe path component. Every character outside
// `[A-Za-z0-9._-]` is replaced with a single `_`; this is lossy but deterministic,
// which is all spec §6 requires.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// identityLabel picks the label a proof's author is filed under: its
// self-declared url when set, else the id's base64 display form.
func identityLabel(p id.PublicId) string {
	if p.Url != "" {
		return p.Url
	}
	return p.Id.String()
}

// kindDir names the on-disk subdirectory for an envelope kind.
func kindDir(k proof.Kind) string {
	switch k {
	case proof.KindTrust:
		return "trust"
	case proof.KindPackageReview:
		return "package-review"
	case proof.KindCodeReview:
		return "code-review"
	default:
		return "unknown"
	}
}

// Path computes `<root>/<sanitized-id-or-url>/<kind>/<YYYY-MM>.crev` for a
// proof authored by author, dated at, and framed as kind (spec §6 "On-disk
// proof-store layout").
func Path(root string, author id.PublicId, k proof.Kind, at time.Time) string {
	month := strconv.Itoa(at.Year()) + "-" + pad2(int(at.Month()))
	return filepath.Join(root, Sanitize(identityLabel(author)), kindDir(k), month+".crev")
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Append writes env's rendered form to the `.crev` file computed from
// author/date/kind, creating any missing directories and opening the file
// append-only. Per spec §5, the handle is opened and closed within this
// call; nothing is kept resident.
func Append(root string, author id.PublicId, at time.Time, env envelope.Envelope) error {
	path := Path(root, author, env.Kind, at)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	data, err := envelope.Emit(env)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
