package core

import "fmt"

type ErrorCode string

const (
	CodeUnknownType  ErrorCode = "unknown_type"
	CodeNotFound     ErrorCode = "not_found"
	CodeConflict     ErrorCode = "conflict"
	CodeInvalidVote  ErrorCode = "invalid_vote"
	CodePrecondition ErrorCode = "precondition"
)

// DomainError is the failure half of every handler result. The dispatcher
// turns it into a wire-level error envelope for the origin connection;
// nothing here is fatal to the process or to other clients.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func ErrUnknownType(msgType string) *DomainError {
	return &DomainError{
		Code:    CodeUnknownType,
		Message: fmt.Sprintf("%s is not a message type this service is prepared for!", msgType),
	}
}

func ErrGameNotFound(game string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s does not exist!", game),
	}
}

func ErrNicknameTaken() *DomainError {
	return &DomainError{
		Code:    CodeConflict,
		Message: "This username is unavailable; please pick another.",
	}
}

func ErrInvalidVote(vote string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidVote,
		Message: fmt.Sprintf("%s is not a valid vote!", vote),
	}
}

func ErrNoVotesToReveal(nickname string) *DomainError {
	return &DomainError{
		Code:    CodePrecondition,
		Message: fmt.Sprintf("%s has no votes to reveal!", nickname),
	}
}

func ErrNoVoteToRevoke(nickname string) *DomainError {
	return &DomainError{
		Code:    CodePrecondition,
		Message: fmt.Sprintf("%s has no votes to revoke!", nickname),
	}
}

func ErrNotAMember(nickname, game string) *DomainError {
	return &DomainError{
		Code:    CodePrecondition,
		Message: fmt.Sprintf("%s is not a part of %s!", nickname, game),
	}
}
