package topo

import (
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dgs3/mdb-index-sync/errors"
)

// Server error codes.
const (
	codeNamespaceNotFound          = 26
	codeIndexOptionsConflict       = 85
	codeIndexKeySpecsConflict      = 86
	codeCommandNotSupportedOnView  = 166
	codeIndexNotFound              = 27
	codeInvalidIndexSpecification  = 197
	codeCannotCreateIndex          = 67
	codeIndexAlreadyExistsDiffSpec = 68
)

func hasErrorCode(err error, codes ...int) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}

	for _, code := range codes {
		if se.HasErrorCode(code) {
			return true
		}
	}

	return false
}

// IsNamespaceNotFound checks if an error is a NamespaceNotFound error.
func IsNamespaceNotFound(err error) bool {
	return hasErrorCode(err, codeNamespaceNotFound)
}

// IsIndexNotFound checks if an error is an IndexNotFound error.
func IsIndexNotFound(err error) bool {
	return hasErrorCode(err, codeIndexNotFound)
}

// IsIndexConflict checks if an index could not be created because an index with the same
// name or key pattern but different options exists.
func IsIndexConflict(err error) bool {
	return hasErrorCode(err,
		codeIndexOptionsConflict,
		codeIndexKeySpecsConflict,
		codeIndexAlreadyExistsDiffSpec)
}

// IsInvalidIndexSpec checks if the server rejected an index specification.
func IsInvalidIndexSpec(err error) bool {
	return hasErrorCode(err, codeInvalidIndexSpecification, codeCannotCreateIndex)
}

// IsCommandNotSupportedOnView checks if a command failed because the namespace is a view.
func IsCommandNotSupportedOnView(err error) bool {
	return hasErrorCode(err, codeCommandNotSupportedOnView)
}
