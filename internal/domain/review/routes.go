package review

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the review API. Reads go on public; writes go on
// protected, which carries service-token auth when it is configured.
func (h *Handler) RegisterRoutes(public, protected gin.IRoutes) {
	if public != nil {
		public.GET("/reviews", h.List)
		public.GET("/reviews/:id", h.Get)
	}

	if protected != nil {
		protected.POST("/reviews", h.Create)
		protected.PATCH("/reviews/:id", h.Update)
		protected.DELETE("/reviews/:id", h.Delete)
		protected.POST("/reviews/:id/image", h.UploadImage)
	}
}
