package repository

import (
	"github.com/kotkala/EduConnectSystem-sub009/pkg/database"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

// registryConflict reports unique and foreign key violations on registry tables as conflicts.
// The services pre-check both cases; this covers writers racing those checks.
func registryConflict(err error, duplicate, referenced string) error {
	if _, ok := database.IsUniqueViolation(err); ok {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, duplicate)
	}
	if _, ok := database.IsForeignKeyViolation(err); ok {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, referenced)
	}
	return err
}
