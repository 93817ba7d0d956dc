package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"recipebox/internal/apperror"
	"recipebox/internal/domain"
)

var immutableUserFields = map[string]bool{"id": true, "createdAt": true}

// ParseUserPatch decodes an update payload keyed by JSON field name.
// Immutable and unknown fields are reported together as one InvalidField error.
func ParseUserPatch(raw map[string]json.RawMessage) (domain.UserPatch, error) {
	var (
		patch   domain.UserPatch
		invalid []string
	)

	for field, value := range raw {
		switch field {
		case "username":
			var v string
			if err := json.Unmarshal(value, &v); err != nil {
				return domain.UserPatch{}, typeError(field, "a string")
			}
			v = strings.TrimSpace(v)
			patch.Username = &v
		case "password":
			var v string
			if err := json.Unmarshal(value, &v); err != nil {
				return domain.UserPatch{}, typeError(field, "a string")
			}
			patch.Password = &v
		case "isAdmin":
			var v bool
			if err := json.Unmarshal(value, &v); err != nil {
				return domain.UserPatch{}, typeError(field, "a boolean")
			}
			patch.IsAdmin = &v
		default:
			invalid = append(invalid, field)
		}
	}

	if len(invalid) > 0 {
		sort.Slice(invalid, func(i, j int) bool {
			// immutable fields first, then alphabetical
			if immutableUserFields[invalid[i]] != immutableUserFields[invalid[j]] {
				return immutableUserFields[invalid[i]]
			}
			return invalid[i] < invalid[j]
		})
		prefix := "Invalid property: "
		if len(invalid) > 1 {
			prefix = "Invalid properties: "
		}
		return domain.UserPatch{}, apperror.New(apperror.KindInvalidField, prefix+strings.Join(invalid, ", "))
	}

	if patch.Empty() {
		return domain.UserPatch{}, apperror.New(apperror.KindInvalidField, "No properties to update.")
	}
	if patch.Username != nil {
		if err := validateUsername(*patch.Username); err != nil {
			return domain.UserPatch{}, asInvalidField(err)
		}
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return domain.UserPatch{}, asInvalidField(err)
		}
	}

	return patch, nil
}

func typeError(field, want string) error {
	return apperror.New(apperror.KindInvalidField, fmt.Sprintf("Property %s must be %s.", field, want))
}

func asInvalidField(err error) error {
	if appErr, ok := apperror.As(err); ok {
		return apperror.New(apperror.KindInvalidField, appErr.Message)
	}
	return err
}
