package core

import (
	"context"
	"net/http"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
)

// Post is an entry on the community board.
type Post struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Likes    int    `json:"like,omitempty"`
}

// PostList is an ordered list of Posts.
type PostList struct {
	Items []Post `json:"posts"`
}

// CommunityClient is the specialized client for reading the community board.
type CommunityClient interface {
	// List returns every Post on the board.
	List(context.Context) (PostList, error)
}

type communityClient struct {
	*restmachinery.BaseClient
}

// NewCommunityClient returns a specialized client for reading the community
// board.
func NewCommunityClient(
	apiAddress string,
	httpClient restmachinery.Doer,
) CommunityClient {
	return &communityClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: httpClient,
		},
	}
}

func (c *communityClient) List(ctx context.Context) (PostList, error) {
	posts := PostList{}
	return posts, c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "api/community/community",
			RespObj: &posts,
		},
	)
}
