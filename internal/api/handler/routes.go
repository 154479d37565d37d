package handler

import "github.com/gin-gonic/gin"

// CRUD holds the handlers a resource exposes. A nil slot means the
// resource does not support that operation and the route is simply not
// registered, so unsupported methods 404 instead of half-working.
// There is deliberately no Update slot: full PUT replacement is not part
// of the API, only PATCH.
type CRUD struct {
	Create        gin.HandlerFunc
	List          gin.HandlerFunc
	Retrieve      gin.HandlerFunc
	PartialUpdate gin.HandlerFunc
	Delete        gin.HandlerFunc
}

// Mount registers the enabled operations on the group. Write operations
// get the guards; reads stay open so anonymous listing keeps working.
func Mount(rg *gin.RouterGroup, idParam string, ops CRUD, writeGuards ...gin.HandlerFunc) {
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(writeGuards)+1)
		chain = append(chain, writeGuards...)
		return append(chain, h)
	}

	if ops.Create != nil {
		rg.POST("", guarded(ops.Create)...)
	}
	if ops.List != nil {
		rg.GET("", ops.List)
	}
	if ops.Retrieve != nil {
		rg.GET("/:"+idParam, ops.Retrieve)
	}
	if ops.PartialUpdate != nil {
		rg.PATCH("/:"+idParam, guarded(ops.PartialUpdate)...)
	}
	if ops.Delete != nil {
		rg.DELETE("/:"+idParam, guarded(ops.Delete)...)
	}
}
