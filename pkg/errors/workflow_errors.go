package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Workflow validation errors. All are local validation outcomes surfaced
// directly to the caller with enough context (workflow type, subject id,
// current stage) to render a user-facing message; none are silently recovered.

// OutOfOrderError rejects a transition that would skip, repeat, or move
// backward through a stage sequence
type OutOfOrderError struct {
	WorkflowType string
	SubjectID    string
	Requested    string
	Expected     string
}

func (e *OutOfOrderError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("out-of-order transition on %s for subject '%s': '%s' is not a valid next step", e.WorkflowType, e.SubjectID, e.Requested)
	}
	return fmt.Sprintf("out-of-order transition on %s for subject '%s': requested '%s' but next stage is '%s'", e.WorkflowType, e.SubjectID, e.Requested, e.Expected)
}

func (e *OutOfOrderError) HTTPStatus() int { return http.StatusBadRequest }
func (e *OutOfOrderError) Code() string    { return "OUT_OF_ORDER_TRANSITION" }

// NewOutOfOrderError creates a new OutOfOrderError
func NewOutOfOrderError(workflowType, subjectID, requested, expected string) *OutOfOrderError {
	return &OutOfOrderError{WorkflowType: workflowType, SubjectID: subjectID, Requested: requested, Expected: expected}
}

// AlreadyCompleteError rejects an advance on a terminal workflow instance
type AlreadyCompleteError struct {
	WorkflowType string
	SubjectID    string
}

func (e *AlreadyCompleteError) Error() string {
	return fmt.Sprintf("%s workflow for subject '%s' is already complete", e.WorkflowType, e.SubjectID)
}

func (e *AlreadyCompleteError) HTTPStatus() int { return http.StatusBadRequest }
func (e *AlreadyCompleteError) Code() string    { return "ALREADY_COMPLETE" }

// NewAlreadyCompleteError creates a new AlreadyCompleteError
func NewAlreadyCompleteError(workflowType, subjectID string) *AlreadyCompleteError {
	return &AlreadyCompleteError{WorkflowType: workflowType, SubjectID: subjectID}
}

// AlreadyDecidedError rejects a decision on a request that already has one
// (a decided PTO request, a reviewed filing)
type AlreadyDecidedError struct {
	RequestID string
	Status    string
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("request '%s' is already %s", e.RequestID, e.Status)
}

func (e *AlreadyDecidedError) HTTPStatus() int { return http.StatusBadRequest }
func (e *AlreadyDecidedError) Code() string    { return "ALREADY_DECIDED" }

// NewAlreadyDecidedError creates a new AlreadyDecidedError
func NewAlreadyDecidedError(requestID, status string) *AlreadyDecidedError {
	return &AlreadyDecidedError{RequestID: requestID, Status: status}
}

// AlreadySubmittedError rejects a second submission of a compliance obligation
type AlreadySubmittedError struct {
	ObligationID string
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("obligation '%s' has already been submitted", e.ObligationID)
}

func (e *AlreadySubmittedError) HTTPStatus() int { return http.StatusBadRequest }
func (e *AlreadySubmittedError) Code() string    { return "ALREADY_SUBMITTED" }

// NewAlreadySubmittedError creates a new AlreadySubmittedError
func NewAlreadySubmittedError(obligationID string) *AlreadySubmittedError {
	return &AlreadySubmittedError{ObligationID: obligationID}
}

// AlreadyTerminalError rejects mutation of a lead in a terminal status
type AlreadyTerminalError struct {
	LeadID string
	Status string
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("lead '%s' is %s and can no longer change", e.LeadID, e.Status)
}

func (e *AlreadyTerminalError) HTTPStatus() int { return http.StatusBadRequest }
func (e *AlreadyTerminalError) Code() string    { return "ALREADY_TERMINAL" }

// NewAlreadyTerminalError creates a new AlreadyTerminalError
func NewAlreadyTerminalError(leadID, status string) *AlreadyTerminalError {
	return &AlreadyTerminalError{LeadID: leadID, Status: status}
}

// InvalidRangeError rejects a date range whose end precedes its start
type InvalidRangeError struct {
	Start string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end '%s' is before start '%s'", e.End, e.Start)
}

func (e *InvalidRangeError) HTTPStatus() int { return http.StatusBadRequest }
func (e *InvalidRangeError) Code() string    { return "INVALID_RANGE" }

// NewInvalidRangeError creates a new InvalidRangeError
func NewInvalidRangeError(start, end string) *InvalidRangeError {
	return &InvalidRangeError{Start: start, End: end}
}

// InvalidOrdinalError rejects a stage definition with an ordinal below 1
type InvalidOrdinalError struct {
	Ordinal int
}

func (e *InvalidOrdinalError) Error() string {
	return fmt.Sprintf("invalid ordinal %d: ordinals start at 1", e.Ordinal)
}

func (e *InvalidOrdinalError) HTTPStatus() int { return http.StatusBadRequest }
func (e *InvalidOrdinalError) Code() string    { return "INVALID_ORDINAL" }

// NewInvalidOrdinalError creates a new InvalidOrdinalError
func NewInvalidOrdinalError(ordinal int) *InvalidOrdinalError {
	return &InvalidOrdinalError{Ordinal: ordinal}
}

// DuplicateOrdinalError rejects a stage definition whose ordinal is already
// taken by an active stage in the same (workflow type, subtype) scope
type DuplicateOrdinalError struct {
	WorkflowType string
	Subtype      string
	Ordinal      int
}

func (e *DuplicateOrdinalError) Error() string {
	return fmt.Sprintf("ordinal %d is already used by an active %s stage for subtype '%s'", e.Ordinal, e.WorkflowType, e.Subtype)
}

func (e *DuplicateOrdinalError) HTTPStatus() int { return http.StatusBadRequest }
func (e *DuplicateOrdinalError) Code() string    { return "DUPLICATE_ORDINAL" }

// NewDuplicateOrdinalError creates a new DuplicateOrdinalError
func NewDuplicateOrdinalError(workflowType, subtype string, ordinal int) *DuplicateOrdinalError {
	return &DuplicateOrdinalError{WorkflowType: workflowType, Subtype: subtype, Ordinal: ordinal}
}

// IsOutOfOrder checks if an error is an OutOfOrderError
func IsOutOfOrder(err error) bool {
	var e *OutOfOrderError
	return errors.As(err, &e)
}

// IsAlreadyComplete checks if an error is an AlreadyCompleteError
func IsAlreadyComplete(err error) bool {
	var e *AlreadyCompleteError
	return errors.As(err, &e)
}

// IsAlreadyDecided checks if an error is an AlreadyDecidedError
func IsAlreadyDecided(err error) bool {
	var e *AlreadyDecidedError
	return errors.As(err, &e)
}

// IsAlreadyTerminal checks if an error is an AlreadyTerminalError
func IsAlreadyTerminal(err error) bool {
	var e *AlreadyTerminalError
	return errors.As(err, &e)
}

// IsAlreadySubmitted checks if an error is an AlreadySubmittedError
func IsAlreadySubmitted(err error) bool {
	var e *AlreadySubmittedError
	return errors.As(err, &e)
}

// IsInvalidRange checks if an error is an InvalidRangeError
func IsInvalidRange(err error) bool {
	var e *InvalidRangeError
	return errors.As(err, &e)
}

// IsInvalidOrdinal checks if an error is an InvalidOrdinalError
func IsInvalidOrdinal(err error) bool {
	var e *InvalidOrdinalError
	return errors.As(err, &e)
}

// IsDuplicateOrdinal checks if an error is a DuplicateOrdinalError
func IsDuplicateOrdinal(err error) bool {
	var e *DuplicateOrdinalError
	return errors.As(err, &e)
}
