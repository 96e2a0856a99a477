package gear

import "github.com/pkg/errors"

// NoValueError is the error returned from enumerations or queries that came back empty, leaving nothing for the caller to act on
var NoValueError error = errors.New("no value could be retrieved")
