package console

import (
	"net/http"
	"strconv"

	"github.com/ansycloud/console/sdk"
	"github.com/ansycloud/console/sdk/core"
	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"
)

var executeRequestSchemaLoader = gojsonschema.NewStringLoader(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["scriptName", "servers"],
	"additionalProperties": false,
	"properties": {
		"scriptName": {
			"type": "string",
			"minLength": 1
		},
		"servers": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["ip"],
				"additionalProperties": false,
				"properties": {
					"name": { "type": "string" },
					"ip": { "type": "string", "minLength": 1 },
					"description": { "type": "string" }
				}
			}
		},
		"dryRun": {
			"type": "boolean"
		}
	}
}`)

var abortRequestSchemaLoader = gojsonschema.NewStringLoader(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["executionId"],
	"additionalProperties": false,
	"properties": {
		"executionId": {
			"type": ["string", "integer"],
			"minLength": 1
		}
	}
}`)

type executionsPage struct {
	Selector core.ExecutionsSelector
	List     core.ExecutionList
}

type scriptsEndpoints struct {
	*BaseEndpoints
	scriptsClient    core.ScriptsClient
	executionsClient core.ExecutionsClient
}

func (s *scriptsEndpoints) Register(router *mux.Router) {
	// List Scripts
	router.Handle(
		"/script",
		s.Guard.Middleware(http.HandlerFunc(s.list)),
	).Methods(http.MethodGet)

	// List Executions. Registered ahead of the Script dashboard so that
	// "executions" isn't taken for a Script name.
	router.Handle(
		"/script/executions",
		s.Guard.Middleware(http.HandlerFunc(s.listExecutions)),
	).Methods(http.MethodGet)

	// Get Execution
	router.Handle(
		"/script/execution/{id}",
		s.Guard.Middleware(http.HandlerFunc(s.getExecution)),
	).Methods(http.MethodGet)

	// Execute Script
	router.Handle(
		"/script/execute",
		s.Guard.Middleware(http.HandlerFunc(s.execute)),
	).Methods(http.MethodPost)

	// Abort Execution
	router.Handle(
		"/script/abort",
		s.Guard.Middleware(http.HandlerFunc(s.abort)),
	).Methods(http.MethodPost)

	// Script dashboard
	router.Handle(
		"/script/{name}",
		s.Guard.Middleware(http.HandlerFunc(s.dashboard)),
	).Methods(http.MethodGet)
}

func (s *scriptsEndpoints) list(w http.ResponseWriter, r *http.Request) {
	s.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "scripts.html",
			Title:    "Scripts",
			EndpointLogic: func() (interface{}, error) {
				return s.scriptsClient.List(r.Context())
			},
		},
	)
}

func (s *scriptsEndpoints) dashboard(w http.ResponseWriter, r *http.Request) {
	s.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "script.html",
			Title:    "Script Dashboard",
			EndpointLogic: func() (interface{}, error) {
				return s.scriptsClient.Dashboard(r.Context(), mux.Vars(r)["name"])
			},
		},
	)
}

func (s *scriptsEndpoints) listExecutions(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "executions.html",
			Title:    "Execution History",
			EndpointLogic: func() (interface{}, error) {
				selector, err := executionsSelectorFromRequest(r)
				if err != nil {
					return nil, err
				}
				list, err := s.executionsClient.List(r.Context(), selector)
				if err != nil {
					return nil, err
				}
				return executionsPage{Selector: selector, List: list}, nil
			},
		},
	)
}

func executionsSelectorFromRequest(
	r *http.Request,
) (core.ExecutionsSelector, error) {
	q := r.URL.Query()
	selector := core.ExecutionsSelector{
		ScriptName: q.Get("name"),
		Status:     core.ExecutionStatus(q.Get("status")),
		DateRange:  q.Get("dateRange"),
	}
	if selector.ScriptName == "" {
		return selector, &sdk.ErrBadRequest{
			Reason: `Query parameter "name" is required.`,
		}
	}
	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return selector, &sdk.ErrBadRequest{
				Reason: `Query parameter "page" must be a positive integer.`,
			}
		}
		selector.Page = page
	}
	return selector, nil
}

func (s *scriptsEndpoints) getExecution(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.ServePage(
		PageRequest{
			W:        w,
			R:        r,
			Template: "execution.html",
			Title:    "Execution",
			EndpointLogic: func() (interface{}, error) {
				return s.executionsClient.Get(
					r.Context(),
					core.ID(mux.Vars(r)["id"]),
				)
			},
		},
	)
}

func (s *scriptsEndpoints) execute(w http.ResponseWriter, r *http.Request) {
	req := core.ExecuteRequest{}
	s.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: executeRequestSchemaLoader,
			ReqBodyObj:          &req,
			EndpointLogic: func() (interface{}, error) {
				return s.scriptsClient.Execute(r.Context(), req)
			},
			SuccessCode: http.StatusCreated,
		},
	)
}

func (s *scriptsEndpoints) abort(w http.ResponseWriter, r *http.Request) {
	req := struct {
		ExecutionID core.ID `json:"executionId"`
	}{}
	s.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: abortRequestSchemaLoader,
			ReqBodyObj:          &req,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, s.scriptsClient.Abort(r.Context(), req.ExecutionID)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
