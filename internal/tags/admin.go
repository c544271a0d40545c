package tags

import (
	"embed"
	"errors"
	"net/http"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

const adminBaseFile = "templates/base.html"

// Admin page names, laid out like the admin template directory
const (
	TagChangeListTemplate        = "admin/tagging/tag/change_list.html"
	JoinConfirmationTemplate     = "admin/tagging/tag/join_confirmation.html"
	TagChangeFormTemplate        = "admin/tagging/tag/change_form.html"
	SynonymChangeListTemplate    = "admin/tagging/synonym/change_list.html"
	TaggedItemChangeListTemplate = "admin/tagging/taggeditem/change_list.html"
)

const (
	SynonymChangeListRoute    = "/admin/tagging/synonym/"
	TaggedItemChangeListRoute = "/admin/tagging/taggeditem/"

	msgNoActionSelected = "No action selected."
	msgNoItemsSelected  = "Items must be selected in order to perform actions on them. No items have been changed."
)

var adminPages = map[string]string{
	TagChangeListTemplate:        "templates/tag_change_list.html",
	JoinConfirmationTemplate:     "templates/tag_join_confirmation.html",
	TagChangeFormTemplate:        "templates/tag_change_form.html",
	SynonymChangeListTemplate:    "templates/synonym_change_list.html",
	TaggedItemChangeListTemplate: "templates/taggeditem_change_list.html",
}

// NewAdminRenderer builds gin's HTML renderer with one template set per
// admin page. Each set executes the shared base layout, which pulls in the
// page's "content" block.
func NewAdminRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	for name, file := range adminPages {
		r.AddFromFS(name, templateFS, adminBaseFile, file)
	}
	return r
}

type adminMessage struct {
	Text  string
	Error bool
}

type adminPage struct {
	Title    string
	Messages []adminMessage
	ListURL  string
}

type tagRow struct {
	ID           string
	Name         string
	Synonyms     string
	Translations string
	URL          string
}

type tagChangeListPage struct {
	adminPage
	Search       string
	ActionName   string
	ActionLabel  string
	ActionField  string
	Multilingual bool
	Rows         []tagRow
	TotalCount   int64
	Page         int
	TotalPages   int
}

type joinConfirmationPage struct {
	adminPage
	Tags         []TagResponse
	ActionName   string
	ActionField  string
	ConfirmField string
}

type tagChangeFormPage struct {
	adminPage
	Tag          TagResponse
	Multilingual bool
	Items        []TaggedItemResponse
}

type synonymChangeListPage struct {
	adminPage
	Search     string
	Synonyms   []SynonymResponse
	TotalCount int64
	Page       int
	TotalPages int
}

type taggedItemChangeListPage struct {
	adminPage
	Items      []TaggedItemResponse
	TotalCount int64
	Page       int
	TotalPages int
}

type AdminController interface {
	TagChangeList(c *gin.Context)
	TagChangeListAction(c *gin.Context)
	TagChangeForm(c *gin.Context)
	SynonymChangeList(c *gin.Context)
	TaggedItemChangeList(c *gin.Context)
}

type adminController struct {
	service Service
}

func NewAdminController(service Service) AdminController {
	return &adminController{service: service}
}

// serverError hands the error to gin's error chain and answers 500
func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (ctrl *adminController) renderTagChangeList(c *gin.Context, status int, query TagListQuery, messages ...adminMessage) {
	result, err := ctrl.service.ListTags(c.Request.Context(), query)
	if err != nil {
		serverError(c, err)
		return
	}

	multilingual := ctrl.service.Multilingual()
	lang := ctrl.service.DefaultLanguage()

	rows := make([]tagRow, len(result.Tags))
	for i, tag := range result.Tags {
		row := tagRow{
			ID:       tag.ID,
			Name:     tag.Name,
			Synonyms: tag.SynonymList(),
			URL:      AdminTagChangeRoute + tag.ID + "/",
		}
		if multilingual {
			row.Name = tag.NameAny(lang)
			row.Translations = tag.TranslationList()
		}
		rows[i] = row
	}

	c.HTML(status, TagChangeListTemplate, tagChangeListPage{
		adminPage: adminPage{
			Title:    "Select tag to change",
			Messages: messages,
			ListURL:  AdminTagChangeRoute,
		},
		Search:       query.Search,
		ActionName:   JoinActionName,
		ActionLabel:  JoinActionLabel,
		ActionField:  ActionCheckboxName,
		Multilingual: multilingual,
		Rows:         rows,
		TotalCount:   result.TotalCount,
		Page:         result.Page,
		TotalPages:   result.TotalPages,
	})
}

func (ctrl *adminController) TagChangeList(c *gin.Context) {
	var query TagListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctrl.renderTagChangeList(c, http.StatusOK, query)
}

// TagChangeListAction dispatches the bulk action posted from the change list
func (ctrl *adminController) TagChangeListAction(c *gin.Context) {
	if c.PostForm("action") != JoinActionName {
		ctrl.renderTagChangeList(c, http.StatusOK, TagListQuery{}, adminMessage{Text: msgNoActionSelected, Error: true})
		return
	}

	var req JoinTagsRequest
	if err := c.ShouldBind(&req); err != nil {
		ctrl.renderTagChangeList(c, http.StatusBadRequest, TagListQuery{}, adminMessage{Text: err.Error(), Error: true})
		return
	}

	if len(req.Selected) == 0 {
		ctrl.renderTagChangeList(c, http.StatusOK, TagListQuery{}, adminMessage{Text: msgNoItemsSelected, Error: true})
		return
	}

	selected, err := ParseIDs(req.Selected)
	if err != nil {
		ctrl.renderTagChangeList(c, http.StatusBadRequest, TagListQuery{}, adminMessage{Text: err.Error(), Error: true})
		return
	}

	if !req.Confirmed() {
		ctrl.renderJoinConfirmation(c, selected)
		return
	}

	primaryID, err := uuid.Parse(req.Tag)
	if err != nil {
		ctrl.renderTagChangeList(c, http.StatusBadRequest, TagListQuery{}, adminMessage{Text: ErrPrimaryNotSelected.Error(), Error: true})
		return
	}

	result, err := ctrl.service.JoinTags(c.Request.Context(), selected, primaryID)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			serverError(c, err)
			return
		}
		ctrl.renderTagChangeList(c, errorStatus(err), TagListQuery{}, adminMessage{Text: err.Error(), Error: true})
		return
	}

	ctrl.renderTagChangeList(c, http.StatusOK, TagListQuery{}, adminMessage{Text: result.Message})
}

func (ctrl *adminController) renderJoinConfirmation(c *gin.Context, selected []uuid.UUID) {
	confirmation, err := ctrl.service.PrepareJoin(c.Request.Context(), selected)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			serverError(c, err)
			return
		}
		ctrl.renderTagChangeList(c, errorStatus(err), TagListQuery{}, adminMessage{Text: err.Error(), Error: true})
		return
	}

	c.HTML(http.StatusOK, JoinConfirmationTemplate, joinConfirmationPage{
		adminPage: adminPage{
			Title:   confirmation.Title,
			ListURL: AdminTagChangeRoute,
		},
		Tags:         confirmation.Tags,
		ActionName:   JoinActionName,
		ActionField:  confirmation.ActionField,
		ConfirmField: confirmation.ConfirmField,
	})
}

func (ctrl *adminController) TagChangeForm(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, ErrTagNotFound.Error())
		return
	}

	tag, err := ctrl.service.GetTagByID(c.Request.Context(), tagID)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		serverError(c, err)
		return
	}

	items, err := ctrl.service.ObjectsForTag(c.Request.Context(), tagID)
	if err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, TagChangeFormTemplate, tagChangeFormPage{
		adminPage: adminPage{
			Title:   "Change tag",
			ListURL: AdminTagChangeRoute,
		},
		Tag:          *tag,
		Multilingual: ctrl.service.Multilingual(),
		Items:        items,
	})
}

func (ctrl *adminController) SynonymChangeList(c *gin.Context) {
	var query SynonymListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	result, err := ctrl.service.ListSynonyms(c.Request.Context(), query)
	if err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, SynonymChangeListTemplate, synonymChangeListPage{
		adminPage: adminPage{
			Title:   "Select synonym to change",
			ListURL: SynonymChangeListRoute,
		},
		Search:     query.Search,
		Synonyms:   result.Synonyms,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}

func (ctrl *adminController) TaggedItemChangeList(c *gin.Context) {
	var query TaggedItemListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	result, err := ctrl.service.ListTaggedItems(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidTagID) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, TaggedItemChangeListTemplate, taggedItemChangeListPage{
		adminPage: adminPage{
			Title:   "Select tagged item to change",
			ListURL: TaggedItemChangeListRoute,
		},
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}
