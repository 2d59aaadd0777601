package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tuiter/tuiter-api/internal/core/authorization"
	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// pathID parses a uuid path parameter, rejecting malformed ids before any
// service call.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.ValidationError(
			`The "`+name+`" in the path is not a valid id.`,
			"Check the requested path.",
		).WithLocation("API:HANDLER:PATH_ID:INVALID").WithKey(name)
	}
	return id, nil
}

// bindFields binds the JSON body into an untyped field set for the input
// projection. An empty body yields an empty set, not an error.
func bindFields(c echo.Context) (authorization.Fields, error) {
	fields := authorization.Fields{}
	if err := c.Bind(&fields); err != nil {
		return nil, domain.ValidationError(
			"The request body is not valid JSON.",
			"Check the submitted data and try again.",
		).WithLocation("API:HANDLER:BIND:INVALID_JSON")
	}
	return fields, nil
}

// stringField extracts a string field from a projected set; missing or
// non-string values come back empty.
func stringField(fields authorization.Fields, key string) string {
	value, _ := fields[key].(string)
	return value
}

// stringPtrField is stringField for optional inputs: nil when absent.
func stringPtrField(fields authorization.Fields, key string) *string {
	value, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &value
}

// uuidPtrField parses an optional uuid field. A present but malformed value
// is a validation error on that key.
func uuidPtrField(fields authorization.Fields, key string) (*uuid.UUID, error) {
	raw, ok := fields[key].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ValidationError(
			`The field "`+key+`" is not a valid id.`,
			"Check the submitted data and try again.",
		).WithLocation("API:HANDLER:FIELD:INVALID_ID").WithKey(key)
	}
	return &id, nil
}
