// SPDX-License-Identifier: Apache-2.0

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidIdentityID = errors.New("invalid identity id")
	ErrEmptyTitle        = errors.New("title is required")
	ErrTitleTooLong      = errors.New("title is too long")
	ErrInvalidFormat     = errors.New("invalid payload format")
	ErrInvalidPermission = errors.New("invalid permission value")
	ErrTooManyTags       = errors.New("too many tags")
	ErrTagTooLong        = errors.New("tag is too long")
	ErrEmptyTag          = errors.New("tag cannot be empty")
	ErrNoFieldsToUpdate  = errors.New("at least one field must be provided for update")
	ErrInvalidVersion    = errors.New("invalid version")
)
