package tags

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tagging/internal/shared/utils/response"
)

type Controller interface {
	// Admin CRUD operations
	CreateTag(c *gin.Context)
	GetTag(c *gin.Context)
	UpdateTag(c *gin.Context)
	DeleteTag(c *gin.Context)
	GetAllTags(c *gin.Context)

	// Synonyms and translations
	AddSynonym(c *gin.Context)
	RemoveSynonym(c *gin.Context)
	GetAllSynonyms(c *gin.Context)
	SetTranslation(c *gin.Context)

	// Join action
	JoinTags(c *gin.Context)

	// Tagging operations
	ResolveTag(c *gin.Context)
	TagObject(c *gin.Context)
	UntagObject(c *gin.Context)
	GetObjectTags(c *gin.Context)
	GetTaggedObjects(c *gin.Context)
	GetAllTaggedItems(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrTagNotFound), errors.Is(err, ErrSynonymNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTagExists), errors.Is(err, ErrSynonymTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTagName), errors.Is(err, ErrTagNameTooLong),
		errors.Is(err, ErrInvalidTagID), errors.Is(err, ErrNoTagsToJoin),
		errors.Is(err, ErrPrimaryNotSelected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := errorStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "Internal server error"
		_ = c.Error(err)
	}
	response.RespondError(c, code, message, nil)
}

func parseTagID(c *gin.Context) (uuid.UUID, bool) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid tag ID", err.Error())
		return uuid.Nil, false
	}
	return tagID, true
}

// Admin CRUD operations

// CreateTag godoc
// @Summary      Create a tag
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Param        request body CreateTagRequest true "Tag"
// @Success      201 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags [post]
func (ctrl *controller) CreateTag(c *gin.Context) {
	var req CreateTagRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tag, err := ctrl.service.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Tag created successfully", tag)
}

// GetTag godoc
// @Summary      Get a tag with its synonyms
// @Tags         admin-tags
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id} [get]
func (ctrl *controller) GetTag(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	tag, err := ctrl.service.GetTagByID(c.Request.Context(), tagID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag retrieved successfully", tag)
}

// UpdateTag godoc
// @Summary      Rename a tag
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        request body UpdateTagRequest true "New name"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id} [put]
func (ctrl *controller) UpdateTag(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tag, err := ctrl.service.RenameTag(c.Request.Context(), tagID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag updated successfully", tag)
}

// DeleteTag godoc
// @Summary      Delete a tag, its synonyms and tagged items
// @Tags         admin-tags
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id} [delete]
func (ctrl *controller) DeleteTag(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeleteTag(c.Request.Context(), tagID); err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag deleted successfully", nil)
}

// GetAllTags godoc
// @Summary      List tags
// @Description  Search matches the tag name, its synonyms and, in multilingual mode, its translations.
// @Tags         admin-tags
// @Produce      json
// @Param        q query string false "Search terms"
// @Param        page query int false "Page"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags [get]
func (ctrl *controller) GetAllTags(c *gin.Context) {
	var query TagListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	tags, err := ctrl.service.ListTags(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tags retrieved successfully", tags)
}

// Synonyms and translations

// AddSynonym godoc
// @Summary      Add a synonym to a tag
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        request body AddSynonymRequest true "Synonym"
// @Success      201 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id}/synonyms [post]
func (ctrl *controller) AddSynonym(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	var req AddSynonymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tag, err := ctrl.service.AddSynonym(c.Request.Context(), tagID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Synonym added successfully", tag)
}

// RemoveSynonym godoc
// @Summary      Remove a synonym from a tag
// @Tags         admin-tags
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        name path string true "Synonym"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id}/synonyms/{name} [delete]
func (ctrl *controller) RemoveSynonym(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	if err := ctrl.service.RemoveSynonym(c.Request.Context(), tagID, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Synonym removed successfully", nil)
}

// GetAllSynonyms godoc
// @Summary      List synonyms with a link to their tag
// @Tags         admin-synonyms
// @Produce      json
// @Param        q query string false "Search terms"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/synonyms [get]
func (ctrl *controller) GetAllSynonyms(c *gin.Context) {
	var query SynonymListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	synonyms, err := ctrl.service.ListSynonyms(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Synonyms retrieved successfully", synonyms)
}

// SetTranslation godoc
// @Summary      Set the name of a tag in one language
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        request body SetTranslationRequest true "Translation"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id}/translations [put]
func (ctrl *controller) SetTranslation(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	var req SetTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tag, err := ctrl.service.SetTranslation(c.Request.Context(), tagID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Translation saved successfully", tag)
}

// Join action

// JoinTags godoc
// @Summary      Join selected tags as synonyms of one tag
// @Description  Without "post" the confirmation data is returned; with "post" and "tag" the join runs.
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Param        request body JoinTagsRequest true "Selection"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/actions/join [post]
func (ctrl *controller) JoinTags(c *gin.Context) {
	var req JoinTagsRequest

	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	selected, err := ParseIDs(req.Selected)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid tag selection", err.Error())
		return
	}

	if !req.Confirmed() {
		confirmation, err := ctrl.service.PrepareJoin(c.Request.Context(), selected)
		if err != nil {
			respondError(c, err)
			return
		}
		response.RespondSuccess(c, http.StatusOK, JoinConfirmTitle, confirmation)
		return
	}

	primaryID, err := uuid.Parse(req.Tag)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid main tag", err.Error())
		return
	}

	result, err := ctrl.service.JoinTags(c.Request.Context(), selected, primaryID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, result.Message, result)
}

// Tagging operations

// ResolveTag godoc
// @Summary      Resolve a synonym to its canonical tag
// @Tags         tags
// @Produce      json
// @Param        name path string true "Synonym or tag name"
// @Success      200 {object} response.StandardApiResponse
// @Router       /tags/resolve/{name} [get]
func (ctrl *controller) ResolveTag(c *gin.Context) {
	tag, err := ctrl.service.ResolveTag(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tag resolved successfully", tag)
}

// TagObject godoc
// @Summary      Attach tags to an object
// @Tags         admin-tagged-items
// @Accept       json
// @Produce      json
// @Param        request body TagObjectRequest true "Object and tag names"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tagged-items [post]
func (ctrl *controller) TagObject(c *gin.Context) {
	var req TagObjectRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	tags, err := ctrl.service.TagObject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Object tagged successfully", tags)
}

// UntagObject godoc
// @Summary      Detach tags from an object
// @Tags         admin-tagged-items
// @Accept       json
// @Produce      json
// @Param        request body TagObjectRequest true "Object and tag names"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tagged-items [delete]
func (ctrl *controller) UntagObject(c *gin.Context) {
	var req TagObjectRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := ctrl.service.UntagObject(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Object untagged successfully", nil)
}

// GetObjectTags godoc
// @Summary      Tags attached to an object
// @Tags         tags
// @Produce      json
// @Param        type path string true "Object type"
// @Param        id path string true "Object ID"
// @Success      200 {object} response.StandardApiResponse
// @Router       /tags/objects/{type}/{id} [get]
func (ctrl *controller) GetObjectTags(c *gin.Context) {
	tags, err := ctrl.service.TagsForObject(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tags retrieved successfully", tags)
}

// GetTaggedObjects godoc
// @Summary      Objects carrying a tag
// @Tags         admin-tags
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tags/{id}/objects [get]
func (ctrl *controller) GetTaggedObjects(c *gin.Context) {
	tagID, ok := parseTagID(c)
	if !ok {
		return
	}

	items, err := ctrl.service.ObjectsForTag(c.Request.Context(), tagID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tagged objects retrieved successfully", items)
}

// GetAllTaggedItems godoc
// @Summary      List tagged items
// @Tags         admin-tagged-items
// @Produce      json
// @Param        object_type query string false "Object type"
// @Param        object_id query string false "Object ID"
// @Param        tag_id query string false "Tag ID"
// @Success      200 {object} response.StandardApiResponse
// @Security     BearerAuth
// @Router       /admin/tagged-items [get]
func (ctrl *controller) GetAllTaggedItems(c *gin.Context) {
	var query TaggedItemListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	items, err := ctrl.service.ListTaggedItems(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Tagged items retrieved successfully", items)
}
