// Package envelope frames signed proof bodies between begin/end markers,
// grounded on the teacher's pkg/envelope/validator.go (gate/validate
// pattern) and pkg/provenance/envelope.go (wrap-body-with-signature
// pattern), adapted from that repo's JWT-style envelope to cargo-crev's
// BEGIN/END marker text format (spec §4.1, §6).
package envelope

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/revtrust/revtrust/pkg/canon"
	"github.com/revtrust/revtrust/pkg/crypto"
	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
)

// Size caps enforced while scanning: a body or signature block exceeding
// these is rejected as malformed rather than read in full, bounding the
// cost of a hostile or truncated input file.
const (
	maxBodyBytes      = 32 * 1024
	maxSignatureBytes = 2 * 1024
)

const markerPrefix = "-----BEGIN CREV "
const markerSuffix = "-----"
const endPrefix = "-----END CREV "
const sigSuffix = " SIGNATURE"

var markerByKind = map[proof.Kind]string{
	proof.KindTrust:         "TRUST",
	proof.KindPackageReview: "PACKAGE REVIEW",
	proof.KindCodeReview:    "CODE REVIEW",
}

var kindByMarker = func() map[string]proof.Kind {
	m := make(map[string]proof.Kind, len(markerByKind))
	for k, v := range markerByKind {
		m[v] = k
	}
	return m
}()

// Envelope is one parsed begin/end-marker block: the raw canonical body
// bytes exactly as signed, and the decoded signature bytes.
type Envelope struct {
	Kind      proof.Kind
	Body      []byte
	Signature []byte
}

// Digest returns the content-addressing digest of the envelope's body.
func (e Envelope) Digest() crypto.Digest {
	return crypto.Blake2b256(e.Body)
}

// Canonical is implemented by every concrete proof content type
// (TrustProof, PackageReview, CodeReview) via its CanonicalFields method.
type Canonical interface {
	proof.Proof
	CanonicalFields() []canon.Field
}

// Build canonically serializes content and signs it with signer, producing
// an Envelope ready to Emit.
func Build(content Canonical, signer *id.UnlockedId) (Envelope, error) {
	body := canon.Serialize(content.CanonicalFields())
	return Envelope{
		Kind:      content.Kind(),
		Body:      body,
		Signature: signer.Sign(body),
	}, nil
}

// Emit renders an Envelope as begin/end-marker text, base64-wrapping the
// signature at 64 columns to match the teacher's PEM-style block output.
func Emit(e Envelope) ([]byte, error) {
	marker, ok := markerByKind[e.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedEnvelope, e.Kind)
	}
	if len(e.Body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedEnvelope, maxBodyBytes)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s%s%s\n", markerPrefix, marker, markerSuffix)
	b.Write(e.Body)
	if len(e.Body) == 0 || e.Body[len(e.Body)-1] != '\n' {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s%s%s%s\n", markerPrefix, marker, sigSuffix, markerSuffix)
	sigB64 := base64.StdEncoding.EncodeToString(e.Signature)
	for i := 0; i < len(sigB64); i += 64 {
		end := i + 64
		if end > len(sigB64) {
			end = len(sigB64)
		}
		b.WriteString(sigB64[i:end])
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s%s%s\n", endPrefix, marker, markerSuffix)
	return b.Bytes(), nil
}

// Parse scans data for zero or more back-to-back envelopes, tolerating
// blank/whitespace-only lines between blocks. It does not verify
// signatures; call Verify on each result to do that.
func Parse(data []byte) ([]Envelope, error) {
	var out []Envelope
	rest := string(data)

	for {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if trimmed == "" {
			return out, nil
		}
		consumed := len(rest) - len(trimmed)
		rest = trimmed

		beginIdx := strings.Index(rest, markerPrefix)
		if beginIdx != 0 {
			return nil, fmt.Errorf("%w: expected begin marker at offset %d", ErrMalformedEnvelope, consumed)
		}
		beginLineEnd := strings.Index(rest, "\n")
		if beginLineEnd < 0 {
			return nil, fmt.Errorf("%w: unterminated begin marker line", ErrMalformedEnvelope)
		}
		beginLine := rest[:beginLineEnd]
		token := strings.TrimSuffix(strings.TrimPrefix(beginLine, markerPrefix), markerSuffix)
		if token == "" || strings.HasSuffix(beginLine, sigSuffix+markerSuffix) {
			return nil, fmt.Errorf("%w: malformed begin marker %q", ErrMalformedEnvelope, beginLine)
		}
		kind, ok := kindByMarker[token]
		if !ok {
			return nil, fmt.Errorf("%w: unknown proof kind marker %q", ErrMalformedEnvelope, token)
		}

		bodyStart := beginLineEnd + 1
		sigMarker := markerPrefix + token + sigSuffix + markerSuffix
		searchWindow := rest[bodyStart:]
		if len(searchWindow) > maxBodyBytes+len(sigMarker)+1 {
			searchWindow = searchWindow[:maxBodyBytes+len(sigMarker)+1]
		}
		sigMarkerIdx := strings.Index(searchWindow, sigMarker)
		if sigMarkerIdx < 0 {
			return nil, fmt.Errorf("%w: %s body exceeds %d bytes or is missing its signature marker", ErrMalformedEnvelope, token, maxBodyBytes)
		}
		body := []byte(rest[bodyStart : bodyStart+sigMarkerIdx])
		if len(body) > maxBodyBytes {
			return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrMalformedEnvelope, token, maxBodyBytes)
		}

		sigLineStart := bodyStart + sigMarkerIdx
		sigMarkerLineEnd := strings.Index(rest[sigLineStart:], "\n")
		if sigMarkerLineEnd < 0 {
			return nil, fmt.Errorf("%w: unterminated signature marker line", ErrMalformedEnvelope)
		}
		sigBodyStart := sigLineStart + sigMarkerLineEnd + 1

		endMarker := endPrefix + token + markerSuffix
		sigSearchWindow := rest[sigBodyStart:]
		if len(sigSearchWindow) > maxSignatureBytes*2+len(endMarker)+1 {
			sigSearchWindow = sigSearchWindow[:maxSignatureBytes*2+len(endMarker)+1]
		}
		endIdx := strings.Index(sigSearchWindow, endMarker)
		if endIdx < 0 {
			return nil, fmt.Errorf("%w: %s signature block exceeds %d bytes or is missing its end marker", ErrMalformedEnvelope, token, maxSignatureBytes)
		}
		sigText := rest[sigBodyStart : sigBodyStart+endIdx]
		sigText = strings.Join(strings.Fields(sigText), "")
		if len(sigText) > maxSignatureBytes*2 {
			return nil, fmt.Errorf("%w: %s signature exceeds %d bytes", ErrMalformedEnvelope, token, maxSignatureBytes)
		}
		sig, err := base64.StdEncoding.DecodeString(sigText)
		if err != nil {
			return nil, fmt.Errorf("%w: %s signature is not valid base64: %v", ErrMalformedEnvelope, token, err)
		}
		if len(sig) > maxSignatureBytes {
			return nil, fmt.Errorf("%w: %s signature exceeds %d bytes", ErrMalformedEnvelope, token, maxSignatureBytes)
		}

		endLineStart := sigBodyStart + endIdx
		endLineEnd := strings.Index(rest[endLineStart:], "\n")
		if endLineEnd < 0 {
			return nil, fmt.Errorf("%w: unterminated end marker line", ErrMalformedEnvelope)
		}

		out = append(out, Envelope{Kind: kind, Body: body, Signature: sig})
		rest = rest[endLineStart+endLineEnd+1:]
	}
}

// Verify checks an envelope's signature against pub and returns the parsed,
// validated proof content. It back-fills Common.Kind from e.Kind when the
// body omits it (legacy bodies, spec §4.1).
func Verify(e Envelope, pub id.PublicId) (proof.Proof, error) {
	if !crypto.Verify(pub.Id.PublicKey(), e.Body, e.Signature) {
		return nil, fmt.Errorf("%w: signer %s", ErrSignatureInvalid, pub.Id.String())
	}
	content, err := proof.Parse(e.Kind, e.Body)
	if err != nil {
		return nil, err
	}
	if content.GetCommon().From.Id != pub.Id {
		return nil, fmt.Errorf("%w: body `from` id %s disagrees with claimed signer %s", ErrSignatureInvalid, content.GetCommon().From.Id, pub.Id)
	}
	return content, nil
}
