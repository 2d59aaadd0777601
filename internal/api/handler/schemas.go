package handler

// Request types validated after the input projection. Fields the projection
// dropped show up empty here and fail their validate tags, so an overposted
// request and an underspecified one get the same treatment.

type createUserRequest struct {
	Tag      string `json:"tag"      validate:"required,min=2,max=32"`
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type updateUserRequest struct {
	Tag         *string `json:"tag"         validate:"omitempty,min=2,max=32"`
	Username    *string `json:"username"    validate:"omitempty,min=2,max=64"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	Password    *string `json:"password"    validate:"omitempty,min=8,max=72"`
	Description *string `json:"description" validate:"omitempty,max=160"`
	Picture     *string `json:"picture"     validate:"omitempty,url"`
}

type banUserRequest struct {
	BanType string `json:"ban_type" validate:"required,oneof=nuke"`
}

type grantFeaturesRequest struct {
	Features []string `json:"features" validate:"required,min=1,dive,required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createTuitRequest struct {
	Body     string  `json:"body"      validate:"required"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
	QuoteID  *string `json:"quote_id"  validate:"omitempty,uuid"`
}

type commentThreadRequest struct {
	CommentsIDs []string `json:"comments_ids" validate:"omitempty,dive,uuid"`
}

type feedbackRequest struct {
	Type string `json:"feedback_type" validate:"required,oneof=view like retuit bookmark"`
}
