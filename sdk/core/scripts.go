package core

import (
	"context"
	"net/http"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
)

// Script is an automation script that can be executed against the servers of
// one or more Sites.
type Script struct {
	// ScriptName is the Script's unique name.
	ScriptName string `json:"scriptName"`
	// Description is a natural language description of the Script.
	Description string `json:"description,omitempty"`
	// CreatedAt is when the Script was created, as reported by the backend.
	CreatedAt string `json:"createdAt,omitempty"`
	// UpdatedAt is when the Script was last modified, as reported by the
	// backend.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ScriptList is an ordered list of Scripts.
type ScriptList struct {
	Items []Script `json:"scripts"`
}

// MasterServer is a master server a Script may target.
type MasterServer struct {
	MasterName string `json:"masterName"`
	IPAddress  string `json:"ipAddress"`
}

// SlaveServer is a slave server a Script may target.
type SlaveServer struct {
	IPAddress   string   `json:"ipAddress"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ScriptDashboard summarizes a Script together with the servers it can target
// and its recent Executions.
type ScriptDashboard struct {
	Script `json:",inline"`
	// ScriptTag is a comma-delimited list of tags.
	ScriptTag string `json:"scriptTag,omitempty"`
	// MasterServers are the master servers the Script may target.
	MasterServers []MasterServer `json:"masterServers,omitempty"`
	// SlaveServers are the slave servers the Script may target.
	SlaveServers []SlaveServer `json:"slaveServers,omitempty"`
	// AvailableTags are the tags slave servers can be filtered by.
	AvailableTags []string `json:"availableTags,omitempty"`
	// RecentExecutions are the Script's most recent Executions.
	RecentExecutions []ExecutionSummary `json:"recentExecutions,omitempty"`
	// RunningExecution is the Script's in-progress Execution, if any.
	RunningExecution *ExecutionSummary `json:"runningExecution,omitempty"`
}

// ServerTarget identifies one server an Execution should run on.
type ServerTarget struct {
	Name        string `json:"name,omitempty"`
	IP          string `json:"ip"`
	Description string `json:"description,omitempty"`
}

// ExecuteRequest asks the backend to run a Script.
type ExecuteRequest struct {
	ScriptName string         `json:"scriptName"`
	Servers    []ServerTarget `json:"servers"`
	// DryRun, if true, asks the backend to check the Script without changing
	// anything on the targeted servers.
	DryRun bool `json:"dryRun"`
}

// ExecuteResponse reports the Execution started by an ExecuteRequest.
type ExecuteResponse struct {
	ExecutionID ID `json:"executionId"`
}

// ScriptsClient is the specialized client for reading and running Scripts.
type ScriptsClient interface {
	// List returns every Script visible to the current user.
	List(context.Context) (ScriptList, error)
	// Dashboard returns the ScriptDashboard for the Script with the given name.
	Dashboard(ctx context.Context, scriptName string) (ScriptDashboard, error)
	// Execute starts a new Execution of a Script.
	Execute(context.Context, ExecuteRequest) (ExecuteResponse, error)
	// Abort stops a running Execution.
	Abort(ctx context.Context, executionID ID) error
}

type scriptsClient struct {
	*restmachinery.BaseClient
}

// NewScriptsClient returns a specialized client for reading and running
// Scripts.
func NewScriptsClient(
	apiAddress string,
	httpClient restmachinery.Doer,
) ScriptsClient {
	return &scriptsClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: httpClient,
		},
	}
}

func (s *scriptsClient) List(ctx context.Context) (ScriptList, error) {
	scripts := ScriptList{}
	items := []Script{}
	err := executeListRequest(
		ctx,
		s.BaseClient,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path:   "api/script/scriptList",
		},
		&scripts,
		&items,
	)
	if err != nil {
		return scripts, err
	}
	if scripts.Items == nil {
		scripts.Items = items
	}
	return scripts, nil
}

func (s *scriptsClient) Dashboard(
	ctx context.Context,
	scriptName string,
) (ScriptDashboard, error) {
	dashboard := ScriptDashboard{}
	return dashboard, s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   "api/script/dashboard",
			ReqBodyObj: struct {
				ScriptName string `json:"scriptName"`
			}{
				ScriptName: scriptName,
			},
			RespObj: &dashboard,
		},
	)
}

func (s *scriptsClient) Execute(
	ctx context.Context,
	req ExecuteRequest,
) (ExecuteResponse, error) {
	resp := ExecuteResponse{}
	return resp, s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       "api/script/execute",
			ReqBodyObj: req,
			RespObj:    &resp,
		},
	)
}

func (s *scriptsClient) Abort(ctx context.Context, executionID ID) error {
	return s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   "api/script/abort",
			ReqBodyObj: struct {
				ExecutionID ID `json:"executionId"`
			}{
				ExecutionID: executionID,
			},
		},
	)
}
