// Package service implements the application's business rules on top of
// the repository layer: input validation, access policy enforcement, and
// orchestration across repositories.
package service

import (
	"errors"

	"trainhub/internal/models"
	"trainhub/internal/policy"

	"gorm.io/gorm"
)

// denialError maps a policy denial to the right error class: guests get
// an authentication error, authenticated users get a permission error.
func denialError(a policy.Actor, d policy.Decision) error {
	if a.IsGuest() {
		return models.NewUnauthorizedError(d.Reason)
	}
	return models.NewForbiddenError(d.Reason)
}

// asNotFound converts a missing-record error into the API's not-found
// error for the given resource, passing other errors through.
func asNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource)
	}
	return err
}
