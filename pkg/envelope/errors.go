package envelope

import "errors"

// ErrMalformedEnvelope marks a structural problem with the begin/end marker
// framing: mismatched markers, an oversize body or signature, or premature
// EOF inside a block.
var ErrMalformedEnvelope = errors.New("envelope: malformed")

// ErrSignatureInvalid marks an envelope whose signature does not verify
// against its body and the claimed signer's public key.
var ErrSignatureInvalid = errors.New("envelope: signature invalid")
