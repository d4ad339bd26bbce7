package service

import (
	"context"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// PostController fetches blog posts.
type PostController struct {
	controller
}

// NewPostController creates a PostController over exec.
func NewPostController(exec outbound.QueryExecutor, opts ...ControllerOption) *PostController {
	return &PostController{controller: newController(exec, opts)}
}

// GetBySlug returns the post with the given slug.
func (c *PostController) GetBySlug(ctx context.Context, slug string) (catalog.Post, error) {
	var data struct {
		Post *wirePost `json:"post"`
	}
	if err := c.query(ctx, postBySlugQuery, map[string]any{"slug": slug}, &data, "post", "slug="+slug); err != nil {
		return catalog.Post{}, err
	}
	if data.Post == nil {
		return catalog.Post{}, notFound("post", "post slug="+slug)
	}
	return mapPost(*data.Post), nil
}

// GetList returns one page of posts. pageSize <= 0 uses the default size;
// an empty after requests the first page.
func (c *PostController) GetList(ctx context.Context, pageSize int, after string) (pagination.Collection[catalog.Post], error) {
	var data struct {
		Posts *connection[wirePost] `json:"posts"`
	}
	if err := c.query(ctx, postListQuery, c.listVars(pageSize, after), &data, "posts", "after="+after); err != nil {
		return pagination.Collection[catalog.Post]{}, err
	}
	if data.Posts == nil {
		return pagination.Collection[catalog.Post]{}, notFound("posts", "posts list is null")
	}
	return mapConnection(*data.Posts, mapPost), nil
}

var _ inbound.PostReader = (*PostController)(nil)
