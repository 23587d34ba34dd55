package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
)

// ExecutionStatus represents where an Execution is within its lifecycle.
type ExecutionStatus string

const (
	// ExecutionStatusRunning represents an Execution that is in progress.
	ExecutionStatusRunning ExecutionStatus = "RUNNING"
	// ExecutionStatusSuccess represents an Execution that succeeded on every
	// targeted server.
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"
	// ExecutionStatusFailure represents an Execution that failed on at least
	// one targeted server.
	ExecutionStatusFailure ExecutionStatus = "FAILURE"
	// ExecutionStatusAborted represents an Execution that was forcefully
	// stopped.
	ExecutionStatusAborted ExecutionStatus = "ABORTED"
)

// ExecutionSummary is the abbreviated form of an Execution that appears in
// lists.
type ExecutionSummary struct {
	ExecutionID  ID              `json:"executionId"`
	ScriptName   string          `json:"scriptName,omitempty"`
	Status       ExecutionStatus `json:"status"`
	StartedAt    string          `json:"startedAt,omitempty"`
	FinishedAt   string          `json:"finishedAt,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	SuccessCount int             `json:"successCount,omitempty"`
	TotalCount   int             `json:"totalCount,omitempty"`
	ExecutedBy   string          `json:"executedBy,omitempty"`
}

// ServerResult is the outcome of an Execution on a single server.
type ServerResult struct {
	ServerID     ID              `json:"serverId,omitempty"`
	ServerName   string          `json:"serverName"`
	ServerType   string          `json:"serverType,omitempty"`
	IP           string          `json:"ip"`
	Status       ExecutionStatus `json:"status"`
	ReturnCode   int             `json:"returnCode"`
	Duration     string          `json:"duration,omitempty"`
	Output       string          `json:"output,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Execution is a single run of a Script across one or more servers.
type Execution struct {
	ExecutionSummary `json:",inline"`
	// ServerResults holds the outcome on each targeted server.
	ServerResults []ServerResult `json:"serverResults,omitempty"`
	// PreviousExecutionID is the Script's prior Execution, if any.
	PreviousExecutionID ID `json:"previousExecutionId,omitempty"`
	// NextExecutionID is the Script's subsequent Execution, if any.
	NextExecutionID ID `json:"nextExecutionId,omitempty"`
}

// Pagination describes where a page of results sits within the full result
// set.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// ExecutionList is one page of a Script's Execution history.
type ExecutionList struct {
	Items      []ExecutionSummary `json:"executions"`
	Pagination *Pagination        `json:"pagination,omitempty"`
}

// ExecutionsSelector represents useful filter criteria when selecting
// Executions for listing. ScriptName is required.
type ExecutionsSelector struct {
	ScriptName string
	// Page is 1-based. Zero selects the first page.
	Page int
	// Status, if set, narrows results to Executions in that status.
	Status ExecutionStatus
	// DateRange is passed through to the backend as is, e.g. "7d".
	DateRange string
}

// queryParams renders the selector the way the backend expects to receive it.
func (e ExecutionsSelector) queryParams() map[string]string {
	page := e.Page
	if page < 1 {
		page = 1
	}
	return map[string]string{
		"name":      e.ScriptName,
		"page":      strconv.Itoa(page),
		"status":    string(e.Status),
		"dateRange": e.DateRange,
	}
}

// ExecutionsClient is the specialized client for reading Execution history.
type ExecutionsClient interface {
	// List returns one page of a Script's Executions.
	List(context.Context, ExecutionsSelector) (ExecutionList, error)
	// Get retrieves a single Execution specified by its identifier.
	Get(context.Context, ID) (Execution, error)
}

type executionsClient struct {
	*restmachinery.BaseClient
}

// NewExecutionsClient returns a specialized client for reading Execution
// history.
func NewExecutionsClient(
	apiAddress string,
	httpClient restmachinery.Doer,
) ExecutionsClient {
	return &executionsClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: httpClient,
		},
	}
}

func (e *executionsClient) List(
	ctx context.Context,
	selector ExecutionsSelector,
) (ExecutionList, error) {
	executions := ExecutionList{}
	return executions, e.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "api/script/executions",
			QueryParams: selector.queryParams(),
			RespObj:     &executions,
		},
	)
}

func (e *executionsClient) Get(
	ctx context.Context,
	id ID,
) (Execution, error) {
	execution := Execution{}
	return execution, e.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path: fmt.Sprintf(
				"api/script/execution/%s",
				url.PathEscape(id.String()),
			),
			RespObj: &execution,
		},
	)
}
