package console

import (
	"net/http"

	"github.com/ansycloud/console/sdk/core"
	"github.com/gorilla/mux"
)

type sitesEndpoints struct {
	*BaseEndpoints
	sitesClient core.SitesClient
}

func (s *sitesEndpoints) Register(router *mux.Router) {
	router.Handle(
		"/site",
		s.Guard.Middleware(http.HandlerFunc(s.list)),
	).Methods(http.MethodGet)
}

func (s *sitesEndpoints) list(w http.ResponseWriter, r *http.Request) {
	s.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "sites.html",
			Title:    "Infrastructure Sites",
			EndpointLogic: func() (interface{}, error) {
				return s.sitesClient.List(r.Context())
			},
		},
	)
}
