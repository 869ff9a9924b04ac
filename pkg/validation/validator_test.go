package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signup struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,pwd"`
	Name     string   `json:"name" validate:"name255"`
	Minutes  int      `json:"time_minutes" validate:"omitempty,gt=0"`
	Tags     []string `json:"tags" validate:"omitempty,dive,required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetails_ValidationErrors(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{Email: "nope", Password: "abc", Minutes: -1})

	details := ToDetails(err)

	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "ensure this field has at least 5 characters", details["password"])
	assert.Equal(t, "must be greater than 0", details["time_minutes"])
}

func TestToDetails_RequiredAndDive(t *testing.T) {
	v := newValidator()
	err := v.Struct(signup{Tags: []string{"ok", ""}})

	details := ToDetails(err)

	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "is required", details["tags[1]"])
}

func TestToDetails_JSONErrors(t *testing.T) {
	var dst signup
	err := json.Unmarshal([]byte(`{"time_minutes":"ten"}`), &dst)
	assert.Equal(t, map[string]string{"time_minutes": "must be a number"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
	assert.Nil(t, ToDetails(nil))
}
