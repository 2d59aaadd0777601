package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/api/middleware"
	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

type UserHandler struct {
	users  ports.UserService
	engine *authorization.Engine
}

func NewUserHandler(users ports.UserService, engine *authorization.Engine) *UserHandler {
	return &UserHandler{users: users, engine: engine}
}

// Create registers a new account. Anonymous holds create:user, so signup
// needs no session.
func (h *UserHandler) Create(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	payload, err := bindFields(c)
	if err != nil {
		return err
	}

	input, err := h.engine.FilterInput(actor, authorization.FeatureCreateUser, payload)
	if err != nil {
		return err
	}

	req := createUserRequest{
		Tag:      stringField(input, "tag"),
		Username: stringField(input, "username"),
		Email:    stringField(input, "email"),
		Password: stringField(input, "password"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Tag:      req.Tag,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	// The fresh account, not the anonymous actor, views its own record.
	out, err := h.engine.FilterOutput(created, authorization.FeatureReadUserSelf, authorization.UserOutput(created))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// GetSelf returns the acting user's own record, private fields included.
func (h *UserHandler) GetSelf(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadUserSelf, authorization.UserOutput(actor))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GetByTag returns a user's public profile.
func (h *UserHandler) GetByTag(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	user, err := h.users.FindByTag(c.Request().Context(), c.Param("tag"))
	if err != nil {
		return err
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadUser, authorization.UserOutput(user))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Update patches a profile. Editing your own record uses update:user (all
// profile fields); editing someone else's needs update:user:others and is
// limited to description and picture.
func (h *UserHandler) Update(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	target, err := h.users.FindByTag(ctx, c.Param("tag"))
	if err != nil {
		return err
	}

	// Ownership only applies to update:user; the :others feature carries no
	// resource rule, so the check runs against the feature alone.
	feature := authorization.FeatureUpdateUser
	var resources []authorization.Resource
	if target.ID == actor.ID {
		resources = append(resources, target)
	} else {
		feature = authorization.FeatureUpdateUserOthers
	}

	allowed, err := h.engine.Can(actor, feature, resources...)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ForbiddenError(
			"You are not allowed to update this user.",
			"Check that your account has the required permissions.",
		).WithLocation("API:HANDLER:USER_UPDATE:FORBIDDEN")
	}

	payload, err := bindFields(c)
	if err != nil {
		return err
	}

	input, err := h.engine.FilterInput(actor, feature, payload, resources...)
	if err != nil {
		return err
	}

	req := updateUserRequest{
		Tag:         stringPtrField(input, "tag"),
		Username:    stringPtrField(input, "username"),
		Email:       stringPtrField(input, "email"),
		Password:    stringPtrField(input, "password"),
		Description: stringPtrField(input, "description"),
		Picture:     stringPtrField(input, "picture"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.users.Update(ctx, target.Tag, ports.UpdateUserInput{
		Tag:         req.Tag,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
		Picture:     req.Picture,
	})
	if err != nil {
		return err
	}

	outFeature := authorization.FeatureReadUser
	if updated.ID == actor.ID {
		outFeature = authorization.FeatureReadUserSelf
	}
	out, err := h.engine.FilterOutput(actor, outFeature, authorization.UserOutput(updated))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Ban permanently bans a user.
func (h *UserHandler) Ban(c echo.Context) error {
	actor := middleware.CurrentUser(c)

	payload, err := bindFields(c)
	if err != nil {
		return err
	}

	input, err := h.engine.FilterInput(actor, authorization.FeatureBanUser, payload)
	if err != nil {
		return err
	}

	req := banUserRequest{BanType: stringField(input, "ban_type")}
	if err := c.Validate(&req); err != nil {
		return err
	}

	banned, err := h.users.Ban(c.Request().Context(), c.Param("tag"), req.BanType)
	if err != nil {
		return err
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadUser, authorization.UserOutput(banned))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GrantFeatures appends capabilities to a user's feature set. Moderation
// only; this is how content features reach accounts after signup.
func (h *UserHandler) GrantFeatures(c echo.Context) error {
	actor := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	target, err := h.users.FindByTag(ctx, c.Param("tag"))
	if err != nil {
		return err
	}

	var req grantFeaturesRequest
	if err := c.Bind(&req); err != nil {
		return domain.ValidationError(
			"The request body is not valid JSON.",
			"Check the submitted data and try again.",
		).WithLocation("API:HANDLER:GRANT_FEATURES:BIND")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// The registry is closed; a grant can only hand out features it knows.
	for _, name := range req.Features {
		if !h.engine.Available(name) {
			return domain.ValidationError(
				"One or more features are not in the feature registry.",
				"Check the submitted feature names and try again.",
			).WithLocation("API:HANDLER:GRANT_FEATURES:UNKNOWN_FEATURE").WithKey(name)
		}
	}

	updated, err := h.users.AddFeatures(ctx, target.ID, req.Features)
	if err != nil {
		return err
	}

	out, err := h.engine.FilterOutput(actor, authorization.FeatureReadUser, authorization.UserOutput(updated))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
