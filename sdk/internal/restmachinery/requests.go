package restmachinery

// OutboundRequest models a request to the backend API.
type OutboundRequest struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string
	ReqBodyObj  interface{}
	// SuccessCode is the only status code treated as success. When zero, any
	// 2xx status is treated as success.
	SuccessCode int
	RespObj     interface{}
	// ErrObjs overrides the error type a given status code is decoded into.
	ErrObjs map[int]error
}
