package authorization

// Feature is a named capability. A user may perform an operation only when
// the feature is present in their feature set; some features additionally
// require ownership of the target resource.
type Feature string

const (
	// User
	FeatureCreateUser   Feature = "create:user"
	FeatureReadUser     Feature = "read:user"
	FeatureReadUserSelf Feature = "read:user:self"
	FeatureUpdateUser   Feature = "update:user"

	// Activation token
	FeatureReadActivationToken Feature = "read:activation_token"

	// Session
	FeatureCreateSession Feature = "create:session"
	FeatureReadSession   Feature = "read:session"

	// Tuit
	FeatureReadTuit           Feature = "read:tuit"
	FeatureReadTuitList       Feature = "read:tuit:list"
	FeatureUpdateTuit         Feature = "update:tuit"
	FeatureUpdateTuitOthers   Feature = "update:tuit:others"
	FeatureCreateTuit         Feature = "create:tuit"
	FeatureCreateTuitFeedback Feature = "create:tuit:feedback"

	// Moderation
	FeatureUpdateUserOthers Feature = "update:user:others"
	FeatureBanUser          Feature = "ban:user"
)

// availableFeatures is the closed registry. It is built once and never
// mutated at runtime; Engine instances share it by reference.
var availableFeatures = newRegistry(
	FeatureCreateUser,
	FeatureReadUser,
	FeatureReadUserSelf,
	FeatureUpdateUser,
	FeatureReadActivationToken,
	FeatureCreateSession,
	FeatureReadSession,
	FeatureReadTuit,
	FeatureReadTuitList,
	FeatureUpdateTuit,
	FeatureUpdateTuitOthers,
	FeatureCreateTuit,
	FeatureCreateTuitFeedback,
	FeatureUpdateUserOthers,
	FeatureBanUser,
)

func newRegistry(features ...Feature) map[Feature]struct{} {
	registry := make(map[Feature]struct{}, len(features))
	for _, f := range features {
		registry[f] = struct{}{}
	}
	return registry
}
