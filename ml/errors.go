package ml

import (
	"errors"
	"fmt"
)

// ErrTransform marks an imputer or scaler rejecting the vector shape. That is
// a bundle/assembler contract breach, not a user input problem, so callers
// should log it rather than ask the user to retry.
var ErrTransform = errors.New("transform rejected vector")

// MissingFeatureError reports an input mapping that lacks a column the bundle
// declares. The presentation layer supplies defaults for every column, so in
// normal operation this never fires.
type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Name)
}
