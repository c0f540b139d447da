package parser

import "errors"

// Common parsing errors
var (
	ErrEmptyData = errors.New("empty data")
)
