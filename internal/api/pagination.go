package api

import (
	"alcyxob/gym-app/internal/repository"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageQuery is the keyset pagination query shared by list endpoints.
type PageQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Cursor string `form:"cursor"`
}

// PageResponse wraps one page of results. NextCursor is omitted on the last page.
type PageResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func pageRequest(c *gin.Context) (repository.PageRequest, bool) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid pagination parameters: "+err.Error())
		return repository.PageRequest{}, false
	}
	return repository.PageRequest{Limit: q.Limit, Cursor: q.Cursor}, true
}

func toPageResponse[T any](page *repository.Page[T]) PageResponse[T] {
	items := page.Items
	if items == nil {
		items = []T{} // Return empty JSON array, not null
	}
	return PageResponse[T]{Items: items, NextCursor: page.NextCursor}
}

// mapPage converts page items with fn.
func mapPage[T, R any](page *repository.Page[T], fn func(*T) R) PageResponse[R] {
	items := make([]R, len(page.Items))
	for i := range page.Items {
		items[i] = fn(&page.Items[i])
	}
	return PageResponse[R]{Items: items, NextCursor: page.NextCursor}
}

// pathID parses an ObjectID route parameter, answering 400 when malformed.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
