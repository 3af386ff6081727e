package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%d"
	SectionsKey   = "sections:list"
)

const (
	PostTTL     = 10 * time.Minute
	SectionsTTL = 30 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached detail view of a post. Called on any
// mutation that changes the post row or its computed aggregates
// (comments and ratings included).
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateSections drops the cached section list. Called on section
// writes and on post create/delete since post_count is part of the view.
func InvalidateSections(ctx context.Context) {
	Invalidate(ctx, SectionsKey)
}
