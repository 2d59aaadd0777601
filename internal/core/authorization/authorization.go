// Package authorization implements the capability-based policy engine: a
// closed feature registry, the Can decision (feature membership plus
// ownership-or-override rules), and per-feature input/output field
// projections that serve as the anti-overposting and anti-leaking mechanism.
package authorization

import (
	"github.com/google/uuid"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// Resource is anything ownership checks can run against.
type Resource interface {
	ResourceOwner() uuid.UUID
}

// Fields is an untyped field set flowing through input/output projections.
type Fields map[string]any

// Engine evaluates capability decisions against the feature registry. The
// zero value is not usable; construct with New.
type Engine struct {
	registry map[Feature]struct{}
}

// New returns an Engine bound to the process-wide feature registry.
func New() *Engine {
	return &Engine{registry: availableFeatures}
}

// Available reports whether name is in the feature registry.
func (e *Engine) Available(name string) bool {
	_, ok := e.registry[Feature(name)]
	return ok
}

// ownershipFeatures require the acting user to own the target resource. The
// optional override feature supersedes the ownership check when present in
// the user's feature set.
var ownershipFeatures = map[Feature]Feature{
	FeatureUpdateUser: "",
	FeatureUpdateTuit: FeatureUpdateTuitOthers,
}

// Can decides whether user may exercise feature, optionally against a target
// resource. It fails closed: a resource supplied for a feature with no
// resource-aware rule yields false.
func (e *Engine) Can(user *domain.User, feature Feature, resource ...Resource) (bool, error) {
	if err := e.validatePrincipal(user, feature); err != nil {
		return false, err
	}

	if !user.HasFeature(string(feature)) {
		return false, nil
	}

	target := firstResource(resource)

	if override, ok := ownershipFeatures[feature]; ok {
		if target != nil && target.ResourceOwner() == user.ID {
			return true, nil
		}
		if override != "" && user.HasFeature(string(override)) {
			return true, nil
		}
		return false, nil
	}

	if target != nil {
		return false, nil
	}

	return true, nil
}

// inputWhitelist is the authoritative per-feature list of accepted input
// fields. Anything not listed is dropped, whatever the caller sent.
var inputWhitelist = map[Feature][]string{
	FeatureCreateSession:    {"email", "password"},
	FeatureCreateUser:       {"tag", "username", "email", "password"},
	FeatureUpdateUser:       {"tag", "username", "email", "password", "description", "picture"},
	FeatureUpdateUserOthers: {"description", "picture"},
	FeatureCreateTuit:       {"body", "parent_id", "quote_id"},
	FeatureUpdateTuit:       {"tuit_id"},
	FeatureBanUser:          {"ban_type"},
}

// FilterInput projects input down to the fields feature accepts. The result
// is empty whenever Can fails for the feature; it is a projection, not a
// gate, so callers still check Can before trusting a non-empty result. The
// returned Fields share no structure with input.
func (e *Engine) FilterInput(user *domain.User, feature Feature, input Fields, target ...Resource) (Fields, error) {
	if err := e.validatePrincipal(user, feature); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, domain.ValidationError(
			`No "input" was given to the filter operation.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:FILTER_INPUT:INPUT_MISSING")
	}

	filtered := Fields{}

	allowed, whitelisted := inputWhitelist[feature]
	if whitelisted {
		ok, err := e.Can(user, feature, target...)
		if err != nil {
			return nil, err
		}
		if ok {
			for _, key := range allowed {
				if value, exists := input[key]; exists {
					filtered[key] = value
				}
			}
		}
	}

	return cloneFields(filtered), nil
}

// outputRule describes a feature's output projection: the base field set, an
// optional ownership requirement on the output record, and optional fields
// exposed only when a predicate holds.
type outputRule struct {
	fields []string
	// ownerKey, when set, names the output field that must equal the acting
	// user's id for the projection to be non-empty.
	ownerKey string
	// conditional returns extra fields to expose for this particular output.
	conditional func(output Fields) []string
}

var outputRules = map[Feature]outputRule{
	FeatureReadUserSelf: {
		fields:   []string{"id", "tag", "username", "email", "features", "description", "created_at", "updated_at"},
		ownerKey: "id",
	},
	FeatureCreateSession: {
		fields:   []string{"id", "token", "expires_at", "created_at", "updated_at"},
		ownerKey: "user_id",
	},
	FeatureReadSession: {
		fields:   []string{"id", "expires_at", "created_at", "updated_at"},
		ownerKey: "user_id",
	},
	FeatureReadUser: {
		fields: []string{"id", "tag", "username", "features", "description", "created_at", "updated_at"},
	},
	FeatureReadTuit: {
		fields: []string{"id", "owner_id", "parent_id", "quote_id", "status", "created_at", "updated_at"},
		conditional: func(output Fields) []string {
			// A disabled tuit keeps its metadata visible but leaks neither
			// content nor engagement.
			if output["status"] == string(domain.StatusDisabled) || output["status"] == domain.StatusDisabled {
				return nil
			}
			return []string{"body", "likes", "retuits", "bookmarks"}
		},
	},
}

// FilterOutput projects output down to what feature allows user to see. Same
// fail-closed semantics as FilterInput; the result never aliases output.
func (e *Engine) FilterOutput(user *domain.User, feature Feature, output Fields) (Fields, error) {
	if err := e.validatePrincipal(user, feature); err != nil {
		return nil, err
	}
	if output == nil {
		return nil, domain.ValidationError(
			`No "output" was given to the filter operation.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:FILTER_OUTPUT:OUTPUT_MISSING")
	}

	filtered := Fields{}

	rule, known := outputRules[feature]
	if known {
		ok, err := e.Can(user, feature)
		if err != nil {
			return nil, err
		}
		if ok && ownerMatches(user, rule, output) {
			for _, key := range rule.fields {
				if value, exists := output[key]; exists {
					filtered[key] = value
				}
			}
			if rule.conditional != nil {
				for _, key := range rule.conditional(output) {
					if value, exists := output[key]; exists {
						filtered[key] = value
					}
				}
			}
		}
	}

	return cloneFields(filtered), nil
}

func ownerMatches(user *domain.User, rule outputRule, output Fields) bool {
	if rule.ownerKey == "" {
		return true
	}
	if user.ID == uuid.Nil {
		return false
	}
	owner, ok := output[rule.ownerKey].(uuid.UUID)
	return ok && owner == user.ID
}

func (e *Engine) validatePrincipal(user *domain.User, feature Feature) error {
	if user == nil {
		return domain.ValidationError(
			`No "user" was given to the authorization operation.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:VALIDATE_USER:USER_MISSING")
	}
	if user.Features == nil {
		return domain.ValidationError(
			`The "user" has no feature set.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:VALIDATE_USER:FEATURES_MISSING")
	}
	if feature == "" {
		return domain.ValidationError(
			`No "feature" was given to the authorization operation.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:VALIDATE_FEATURE:FEATURE_MISSING")
	}
	if _, ok := e.registry[feature]; !ok {
		return domain.ValidationError(
			`The requested feature is not in the feature registry.`,
			"Contact support and quote the error_id field.",
		).WithLocation("MODEL:AUTHORIZATION:VALIDATE_FEATURE:FEATURE_NOT_AVAILABLE").WithKey(string(feature))
	}
	return nil
}

func firstResource(resources []Resource) Resource {
	for _, r := range resources {
		if r != nil {
			return r
		}
	}
	return nil
}

// cloneFields deep-copies a field set so later mutation of the source cannot
// retroactively change a projection already handed out.
func cloneFields(fields Fields) Fields {
	clone := make(Fields, len(fields))
	for key, value := range fields {
		clone[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Fields:
		return cloneFields(v)
	case map[string]any:
		return cloneFields(Fields(v))
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case *uuid.UUID:
		if v == nil {
			return (*uuid.UUID)(nil)
		}
		id := *v
		return &id
	default:
		return v
	}
}
