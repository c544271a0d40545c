package tags

import "errors"

var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrSynonymNotFound    = errors.New("synonym not found")
	ErrTagExists          = errors.New("a tag with this name already exists")
	ErrSynonymTaken       = errors.New("synonym already belongs to another tag")
	ErrInvalidTagName     = errors.New("tag name must not be empty or contain whitespace")
	ErrTagNameTooLong     = errors.New("tag name is too long")
	ErrInvalidTagID       = errors.New("invalid tag ID")
	ErrNoTagsToJoin       = errors.New("no tags selected to join")
	ErrPrimaryNotSelected = errors.New("the main tag must be one of the selected tags")
)
