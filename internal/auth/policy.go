package auth

import (
	"recipebox/internal/apperror"
	"recipebox/internal/domain"
)

// CanAct reports whether the actor may mutate the target user: owners act on
// themselves, admins act on anyone.
func CanAct(actorID string, actorIsAdmin bool, targetID string) bool {
	return actorIsAdmin || actorID == targetID
}

// Authorize fails with Unauthorized unless the identity may act on targetID.
func Authorize(id Identity, targetID string) error {
	if !id.Authenticated() || !CanAct(id.UserID, id.IsAdmin, targetID) {
		return apperror.ErrUnauthorized
	}
	return nil
}

// AuthorizeMutation applies Authorize and additionally reserves the admin
// flag for admins, including on the actor's own record.
func AuthorizeMutation(id Identity, targetID string, patch domain.UserPatch) error {
	if err := Authorize(id, targetID); err != nil {
		return err
	}
	if patch.TouchesAdmin() && !id.IsAdmin {
		return apperror.ErrUnauthorized
	}
	return nil
}
