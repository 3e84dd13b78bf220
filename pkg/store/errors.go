package store

import "errors"

// ErrDimensionMismatch indicates vectors of different widths were mixed in
// one store, usually because embeddings from incompatible providers were
// combined. Fatal to the operation; never retried.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")
