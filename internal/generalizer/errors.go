package generalizer

import "errors"

// ErrGeneralizationDepth reports a higher-order level beyond the number of
// social markers available to drop.
var ErrGeneralizationDepth = errors.New("generalization depth exceeded")
