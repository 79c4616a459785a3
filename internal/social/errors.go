package social

import "errors"

// Domain errors returned across the facade boundary. Handlers translate
// these into HTTP responses; raw storage errors never cross over.
var (
	ErrNotAuthenticated     = errors.New("not_authenticated")
	ErrSelfReference        = errors.New("self_reference")
	ErrDuplicateRequest     = errors.New("duplicate_request")
	ErrReciprocalRequest    = errors.New("reciprocal_request")
	ErrAlreadyFriends       = errors.New("already_friends")
	ErrRequestNotFound      = errors.New("request_not_found")
	ErrCommentNotFound      = errors.New("comment_not_found")
	ErrRelationshipConflict = errors.New("relationship_conflict")
	ErrNotAuthorized        = errors.New("not_authorized")
)
