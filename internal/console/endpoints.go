package console

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/ansycloud/console/sdk"
	"github.com/ansycloud/console/sdk/authn"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Endpoints is implemented by anything that can attach handlers to the
// console's router.
type Endpoints interface {
	Register(router *mux.Router)
}

// BaseEndpoints holds the request handling logic common to every group of
// console endpoints.
type BaseEndpoints struct {
	Renderer *Renderer
	// Guard gates views that require an authenticated session.
	Guard *authn.Guard
}

// InboundRequest models a request to one of the console's JSON endpoints.
type InboundRequest struct {
	W                   http.ResponseWriter
	R                   *http.Request
	ReqBodySchemaLoader gojsonschema.JSONLoader
	ReqBodyObj          interface{}
	EndpointLogic       func() (interface{}, error)
	SuccessCode         int
}

// PageRequest models a request for one of the console's HTML views.
type PageRequest struct {
	W http.ResponseWriter
	R *http.Request
	// Template is the page template to render.
	Template string
	// Title is the page's title.
	Title         string
	EndpointLogic func() (interface{}, error)
}

func (b *BaseEndpoints) readAndValidateRequestBody(
	w http.ResponseWriter,
	r *http.Request,
	bodySchemaLoader gojsonschema.JSONLoader,
	bodyObj interface{},
) bool {
	defer r.Body.Close()
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.Println(errors.Wrap(err, "error reading request body"))
		b.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&sdk.ErrBadRequest{Reason: "Could not read request body."},
		)
		return false
	}
	if bodySchemaLoader != nil {
		var validationResult *gojsonschema.Result
		validationResult, err = gojsonschema.Validate(
			bodySchemaLoader,
			gojsonschema.NewBytesLoader(bodyBytes),
		)
		if err != nil {
			// As long as the schema itself is valid, this means the body wasn't
			// valid JSON.
			log.Println(errors.Wrap(err, "error validating request body"))
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&sdk.ErrBadRequest{Reason: "Could not validate request body."},
			)
			return false
		}
		if !validationResult.Valid() {
			verrStrs := make([]string, len(validationResult.Errors()))
			for i, verr := range validationResult.Errors() {
				verrStrs[i] = verr.String()
			}
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&sdk.ErrBadRequest{
					Reason:  "Request body failed JSON validation",
					Details: verrStrs,
				},
			)
			return false
		}
	}
	if bodyObj != nil {
		if err = json.Unmarshal(bodyBytes, bodyObj); err != nil {
			log.Println(errors.Wrap(err, "error unmarshaling request body"))
			b.WriteAPIResponse(
				w,
				http.StatusInternalServerError,
				&sdk.ErrInternalServer{},
			)
			return false
		}
	}
	return true
}

// ServeRequest validates and decodes the request body, if one is expected,
// invokes the endpoint logic, and writes its result or error as JSON. If the
// session expired along the way, the user has already been redirected and
// nothing more is written.
func (b *BaseEndpoints) ServeRequest(req InboundRequest) {
	if req.ReqBodySchemaLoader != nil || req.ReqBodyObj != nil {
		if !b.readAndValidateRequestBody(
			req.W,
			req.R,
			req.ReqBodySchemaLoader,
			req.ReqBodyObj,
		) {
			return
		}
	}
	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		if redirected(req.R.Context()) {
			return
		}
		statusCode, apiErr := apiErrorFor(err)
		b.WriteAPIResponse(req.W, statusCode, apiErr)
		return
	}
	b.WriteAPIResponse(req.W, req.SuccessCode, respBodyObj)
}

// WriteAPIResponse writes the response object as JSON.
func (b *BaseEndpoints) WriteAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, ok := response.([]byte)
	if !ok {
		var err error
		if responseBody, err = json.Marshal(response); err != nil {
			log.Println(errors.Wrap(err, "error marshaling response body"))
		}
	}
	if _, err := w.Write(responseBody); err != nil {
		log.Println(errors.Wrap(err, "error writing response body"))
	}
}

// ServePage invokes the endpoint logic and renders its result with the
// request's page template. Errors are rendered in the same layout. If the
// session expired along the way, the user has already been redirected and
// nothing more is written.
func (b *BaseEndpoints) ServePage(req PageRequest) {
	data, err := req.EndpointLogic()
	if err != nil {
		if redirected(req.R.Context()) {
			return
		}
		statusCode, apiErr := apiErrorFor(err)
		b.Renderer.Render(
			req.W,
			req.R,
			statusCode,
			"error.html",
			Page{Title: "Error", Error: apiErr.Error()},
		)
		return
	}
	b.Renderer.Render(
		req.W,
		req.R,
		http.StatusOK,
		req.Template,
		Page{Title: req.Title, Data: data},
	)
}

// apiErrorFor maps an error to the status code and error value that should be
// reported to the user. Unrecognized errors are logged and reported as
// internal server errors.
func apiErrorFor(err error) (int, error) {
	switch e := errors.Cause(err).(type) {
	case *sdk.ErrAuthenticationFailed:
		return http.StatusUnauthorized, e
	case *sdk.ErrAuthenticationExpired:
		return http.StatusUnauthorized, e
	case *sdk.ErrAuthorization:
		return http.StatusForbidden, e
	case *sdk.ErrBadRequest:
		return http.StatusBadRequest, e
	case *sdk.ErrNotFound:
		return http.StatusNotFound, e
	case *sdk.ErrConflict:
		return http.StatusConflict, e
	case *sdk.ErrInternalServer:
		return http.StatusInternalServerError, e
	default:
		log.Println(err)
		return http.StatusInternalServerError, &sdk.ErrInternalServer{}
	}
}
