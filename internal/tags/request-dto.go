package tags

type CreateTagRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=100"`
	Synonyms []string `json:"synonyms" binding:"omitempty,dive,min=1,max=100"`
}

type UpdateTagRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

type AddSynonymRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type SetTranslationRequest struct {
	LanguageCode string `json:"language_code" binding:"required,min=2,max=10"`
	Name         string `json:"name" binding:"required,min=1,max=100"`
}

// JoinTagsRequest mirrors the admin action form: the selected tags, the
// confirmation flag and the chosen canonical tag.
type JoinTagsRequest struct {
	Selected []string `json:"selected" form:"_selected_action"`
	Post     string   `json:"post" form:"post"`
	Tag      string   `json:"tag" form:"tag"`
}

// Confirmed reports whether the user already picked the canonical tag
func (r JoinTagsRequest) Confirmed() bool {
	return r.Post != ""
}

type TagObjectRequest struct {
	ObjectType string   `json:"object_type" binding:"required,max=100"`
	ObjectID   string   `json:"object_id" binding:"required,max=100"`
	Tags       []string `json:"tags" binding:"required,min=1"`
}

type TagListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"q"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name created_at updated_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type SynonymListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"q"`
}

type TaggedItemListQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	ObjectType string `form:"object_type"`
	ObjectID   string `form:"object_id"`
	TagID      string `form:"tag_id"`
}
