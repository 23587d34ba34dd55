package console

import (
	"net/http"

	"github.com/ansycloud/console/sdk/core"
	"github.com/gorilla/mux"
)

// publicEndpoints serve views that need no session.
type publicEndpoints struct {
	*BaseEndpoints
	communityClient core.CommunityClient
}

func (p *publicEndpoints) Register(router *mux.Router) {
	router.HandleFunc("/", p.index).Methods(http.MethodGet)
	router.HandleFunc("/community", p.community).Methods(http.MethodGet)
}

func (p *publicEndpoints) index(w http.ResponseWriter, r *http.Request) {
	p.Renderer.Render(
		w,
		r,
		http.StatusOK,
		"index.html",
		Page{Title: "AnsyCloud"},
	)
}

func (p *publicEndpoints) community(w http.ResponseWriter, r *http.Request) {
	p.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "community.html",
			Title:    "Community",
			EndpointLogic: func() (interface{}, error) {
				return p.communityClient.List(r.Context())
			},
		},
	)
}
