package tags

import (
	"github.com/gin-gonic/gin"
)

// SetupTagRoutes registers the JSON API. staffOnly guards the admin group.
func SetupTagRoutes(router *gin.RouterGroup, controller Controller, staffOnly ...gin.HandlerFunc) {
	// Public routes
	publicTags := router.Group("/tags")
	{
		publicTags.GET("/resolve/:name", controller.ResolveTag)        // GET /api/v1/tags/resolve/:name - Resolve synonym to tag
		publicTags.GET("/objects/:type/:id", controller.GetObjectTags) // GET /api/v1/tags/objects/:type/:id - Tags of an object
	}

	// Admin routes
	adminTags := router.Group("/admin/tags")
	adminTags.Use(staffOnly...)
	{
		adminTags.POST("", controller.CreateTag)                          // POST /api/v1/admin/tags - Create tag
		adminTags.GET("", controller.GetAllTags)                          // GET /api/v1/admin/tags - Search tags
		adminTags.POST("/actions/join", controller.JoinTags)              // POST /api/v1/admin/tags/actions/join - Join tags
		adminTags.GET("/:id", controller.GetTag)                          // GET /api/v1/admin/tags/:id - Get tag by ID
		adminTags.PUT("/:id", controller.UpdateTag)                       // PUT /api/v1/admin/tags/:id - Rename tag
		adminTags.DELETE("/:id", controller.DeleteTag)                    // DELETE /api/v1/admin/tags/:id - Delete tag
		adminTags.GET("/:id/objects", controller.GetTaggedObjects)        // GET /api/v1/admin/tags/:id/objects - Tagged objects
		adminTags.POST("/:id/synonyms", controller.AddSynonym)            // POST /api/v1/admin/tags/:id/synonyms - Add synonym
		adminTags.DELETE("/:id/synonyms/:name", controller.RemoveSynonym) // DELETE /api/v1/admin/tags/:id/synonyms/:name
		adminTags.PUT("/:id/translations", controller.SetTranslation)     // PUT /api/v1/admin/tags/:id/translations
	}

	adminSynonyms := router.Group("/admin/synonyms")
	adminSynonyms.Use(staffOnly...)
	{
		adminSynonyms.GET("", controller.GetAllSynonyms) // GET /api/v1/admin/synonyms - Search synonyms
	}

	adminItems := router.Group("/admin/tagged-items")
	adminItems.Use(staffOnly...)
	{
		adminItems.GET("", controller.GetAllTaggedItems) // GET /api/v1/admin/tagged-items - List tagged items
		adminItems.POST("", controller.TagObject)        // POST /api/v1/admin/tagged-items - Tag an object
		adminItems.DELETE("", controller.UntagObject)    // DELETE /api/v1/admin/tagged-items - Untag an object
	}
}

// SetupAdminRoutes registers the HTML admin pages at the engine root
func SetupAdminRoutes(router gin.IRouter, controller AdminController, staffOnly ...gin.HandlerFunc) {
	admin := router.Group("/admin/tagging")
	admin.Use(staffOnly...)
	{
		admin.GET("/tag/", controller.TagChangeList)
		admin.POST("/tag/", controller.TagChangeListAction)
		admin.GET("/tag/:id/", controller.TagChangeForm)
		admin.GET("/synonym/", controller.SynonymChangeList)
		admin.GET("/taggeditem/", controller.TaggedItemChangeList)
	}
}
