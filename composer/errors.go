package composer

import (
	"errors"

	"github.com/lex00/wetwire-mixin-go/capgraph"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/order"
	"github.com/lex00/wetwire-mixin-go/override"
	"github.com/lex00/wetwire-mixin-go/plan"
)

// Stable error codes reported in domain results.
const (
	CodeCircularDependency    = "CIRCULAR_DEPENDENCY"
	CodeSelfDependency        = "SELF_DEPENDENCY"
	CodeUnresolvedRequirement = "UNRESOLVED_REQUIREMENT"
	CodeAggregationCycle      = "AGGREGATION_CYCLE"
	CodeSealedMember          = "SEALED_MEMBER"
	CodeOverrideConflict      = "OVERRIDE_CONFLICT"
	CodeUnsupportedAPIVersion = "UNSUPPORTED_API_VERSION"
	CodeInvalidDeclaration    = "INVALID_DECLARATION"
	CodePlanFailed            = "PLAN_FAILED"
)

// errorCode classifies a single planning or loading error.
func errorCode(err error, fallback string) string {
	var (
		self       *order.SelfDependencyError
		circular   *order.CircularDependencyError
		unresolved *plan.UnresolvedRequirementError
		cycle      *capgraph.AggregationCycleError
		sealed     *plan.SealedMemberError
		mismatch   *override.SignatureMismatchError
		duplicate  *override.DuplicateMemberError
		apiVersion *declare.UnsupportedAPIVersionError
		dupMixin   *declare.DuplicateMixinError
	)
	switch {
	case errors.As(err, &self):
		return CodeSelfDependency
	case errors.As(err, &circular):
		return CodeCircularDependency
	case errors.As(err, &unresolved):
		return CodeUnresolvedRequirement
	case errors.As(err, &cycle):
		return CodeAggregationCycle
	case errors.As(err, &sealed):
		return CodeSealedMember
	case errors.As(err, &mismatch), errors.As(err, &duplicate):
		return CodeOverrideConflict
	case errors.As(err, &apiVersion):
		return CodeUnsupportedAPIVersion
	case errors.As(err, &dupMixin),
		errors.Is(err, declare.ErrMissingTarget),
		errors.Is(err, declare.ErrMissingMixin),
		errors.Is(err, declare.ErrMixinIsTarget):
		return CodeInvalidDeclaration
	default:
		return fallback
	}
}

// splitErrors flattens stage wrappers and joined errors into the individual
// failures they carry.
func splitErrors(err error) []error {
	var stage *plan.StageError
	if errors.As(err, &stage) {
		err = stage.Err
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []error{err}
}

// planErrors converts a planner error into domain errors, one per failure.
func planErrors(path string, err error) []domain.Error {
	var out []domain.Error
	for _, e := range splitErrors(err) {
		out = append(out, domain.Error{
			Path:     path,
			Severity: "error",
			Message:  e.Error(),
			Code:     errorCode(e, CodePlanFailed),
		})
	}
	return out
}

// planFailure reports a plan that could not be built.
func planFailure(path string, err error) *domain.Result {
	msg := "planning failed"
	var stage *plan.StageError
	if errors.As(err, &stage) {
		msg = "planning failed before " + stage.Stage.String()
	}
	return domain.NewErrorResultMultiple(msg, planErrors(path, err))
}

// failure reports a single error with a code chosen from err, or fallback.
func failure(msg, path, fallback string, err error) *domain.Result {
	return domain.NewErrorResult(msg, domain.Error{
		Path:     path,
		Severity: "error",
		Message:  err.Error(),
		Code:     errorCode(err, fallback),
	})
}
