package proof

import "errors"

// ErrValidation marks a content invariant violation (empty issue/advisory
// id, kind mismatch, ...). Wrap with fmt.Errorf("%w: ...", ErrValidation)
// for specifics.
var ErrValidation = errors.New("proof: validation failed")
