package model

import "fmt"

// Kind classifies an Error into the three families spec.md §7 names:
// user-input, storage, and remote. MCP callers map Kind to a stable
// machine-readable identifier; the CLI maps Kind to an exit code.
type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindAlreadyExists     Kind = "AlreadyExists"
	KindReferenceMissing  Kind = "ReferenceMissing"
	KindDepthExceeded     Kind = "DepthExceeded"
	KindCycleWouldForm    Kind = "CycleWouldForm"
	KindPreconditionFailed Kind = "PreconditionFailed"
	KindAlreadyStarted    Kind = "AlreadyStarted"
	KindValidationFailed  Kind = "ValidationFailed"
	KindDataCorruption    Kind = "DataCorruption"
	KindStorageIO         Kind = "StorageIO"
	KindGitHubAuth        Kind = "GitHubAuth"
	KindGitHubTransport   Kind = "GitHubTransport"
	KindGitHubRateLimit   Kind = "GitHubRateLimit"
	KindInternal          Kind = "Internal"
)

// Error is the task graph's single error type. Message is a one-line
// user-visible description; Hint is an optional suggestion ("Run `list
// --all` to see all tasks"). Cause, when set, is preserved for errors.As
// against wrapped transport errors (e.g. a go-github *ErrorResponse).
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, model.KindX) style checks work by comparing Kind
// against a sentinel constructed with that kind and no message.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

func newErr(k Kind, msg string, hint string) *Error {
	return &Error{Kind: k, Message: msg, Hint: hint}
}

func NotFound(msg string, hint ...string) *Error {
	return newErr(KindNotFound, msg, firstHint(hint))
}

func AlreadyExists(msg string, hint ...string) *Error {
	return newErr(KindAlreadyExists, msg, firstHint(hint))
}

func ReferenceMissing(msg string, hint ...string) *Error {
	return newErr(KindReferenceMissing, msg, firstHint(hint))
}

func DepthExceeded(msg string, hint ...string) *Error {
	return newErr(KindDepthExceeded, msg, firstHint(hint))
}

func CycleWouldForm(msg string, hint ...string) *Error {
	return newErr(KindCycleWouldForm, msg, firstHint(hint))
}

func PreconditionFailed(msg string, hint ...string) *Error {
	return newErr(KindPreconditionFailed, msg, firstHint(hint))
}

func AlreadyStarted(msg string, hint ...string) *Error {
	return newErr(KindAlreadyStarted, msg, firstHint(hint))
}

func ValidationFailed(msg string, hint ...string) *Error {
	return newErr(KindValidationFailed, msg, firstHint(hint))
}

func DataCorruption(msg string, hint ...string) *Error {
	return newErr(KindDataCorruption, msg, firstHint(hint))
}

func StorageIO(msg string, cause error) *Error {
	return &Error{Kind: KindStorageIO, Message: msg, Cause: cause}
}

func GitHubAuth(msg string, cause error) *Error {
	return &Error{Kind: KindGitHubAuth, Message: msg, Cause: cause}
}

func GitHubTransport(msg string, cause error) *Error {
	return &Error{Kind: KindGitHubTransport, Message: msg, Cause: cause}
}

func GitHubRateLimit(msg string, cause error) *Error {
	return &Error{Kind: KindGitHubRateLimit, Message: msg, Cause: cause}
}

// Internal marks a violation discovered mid-mutation: a programming error,
// per spec.md §7's propagation policy. The store is never written after one.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

func firstHint(hint []string) string {
	if len(hint) > 0 {
		return hint[0]
	}
	return ""
}
