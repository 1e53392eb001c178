package usecase

import (
	"errors"
	"net/http"
	"strings"

	"Referent/internal/domain"
)

// User-facing messages. Details stay in the logs.
const (
	MsgInvalidURL       = "Invalid URL format. Please enter a link starting with http:// or https://."
	MsgMissingBody      = "Article text is missing or empty."
	MsgMissingAction    = "Action is not specified."
	MsgMissingText      = "Post text is missing or empty."
	MsgInvalidRequest   = "Invalid request."
	MsgMalformedRequest = "Malformed request body."
	MsgFetchFailed      = "Could not load the article from this link."
	MsgFetchTimeout     = "The article took too long to load. Please try again later."
	MsgFetchConnection  = "Could not connect to the article's site. Check the link and try again."
	MsgContentNotFound  = "Could not find readable content in the article."
	MsgAITimeout        = "The AI service took too long to respond. Please try again later or use a shorter article."
	MsgAIUnauthorized   = "AI service authentication failed. Check the API key."
	MsgAIRateLimited    = "Too many requests to the AI service. Please wait a moment and try again."
	MsgAIBadRequest     = "The AI service rejected the request."
	MsgAIUnavailable    = "The AI service is temporarily unavailable. Please try again later."
	MsgAIEmpty          = "The AI service returned an empty response. Please try again."
	MsgNotConfigured    = "The service is not configured. Please contact the administrator."
	MsgInternal         = "Something went wrong. Please try again later."
)

// MsgUnknownAction lists every action the service accepts.
var MsgUnknownAction = "Unknown action. Available actions: " + actionList() + "."

func actionList() string {
	names := make([]string, len(domain.ActionKinds))
	for i, kind := range domain.ActionKinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}

// Failure is what a client sees for an error.
type Failure struct {
	Status  int
	Message string
}

// Classify collapses any service error into a status and a fixed message.
func Classify(err error) Failure {
	var (
		inputErr    *domain.InvalidInputError
		fetchErr    *domain.FetchError
		upstreamErr *domain.UpstreamError
	)

	switch {
	case errors.As(err, &inputErr):
		return Failure{Status: http.StatusBadRequest, Message: inputMessage(inputErr.Field)}
	case errors.Is(err, domain.ErrInvalidInput):
		return Failure{Status: http.StatusBadRequest, Message: MsgInvalidRequest}
	case errors.Is(err, domain.ErrUnknownAction):
		return Failure{Status: http.StatusBadRequest, Message: MsgUnknownAction}
	case errors.As(err, &fetchErr):
		return Failure{Status: fetchErr.ClientStatus(), Message: fetchMessage(fetchErr.Class)}
	case errors.Is(err, domain.ErrContentNotFound):
		return Failure{Status: http.StatusUnprocessableEntity, Message: MsgContentNotFound}
	case errors.Is(err, domain.ErrTimeout):
		return Failure{Status: http.StatusGatewayTimeout, Message: MsgAITimeout}
	case errors.As(err, &upstreamErr):
		status := upstreamErr.ClientStatus()
		return Failure{Status: status, Message: upstreamMessage(status)}
	case errors.Is(err, domain.ErrEmptyResult):
		return Failure{Status: http.StatusInternalServerError, Message: MsgAIEmpty}
	case errors.Is(err, domain.ErrConfiguration):
		return Failure{Status: http.StatusInternalServerError, Message: MsgNotConfigured}
	}
	return Failure{Status: http.StatusInternalServerError, Message: MsgInternal}
}

func inputMessage(field string) string {
	switch field {
	case "url":
		return MsgInvalidURL
	case "body":
		return MsgMissingBody
	case "actionKind":
		return MsgMissingAction
	case "text":
		return MsgMissingText
	}
	return MsgInvalidRequest
}

func fetchMessage(class domain.FetchClass) string {
	switch class {
	case domain.FetchTimeout:
		return MsgFetchTimeout
	case domain.FetchConnection:
		return MsgFetchConnection
	}
	return MsgFetchFailed
}

func upstreamMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return MsgAIUnauthorized
	case http.StatusTooManyRequests:
		return MsgAIRateLimited
	case http.StatusBadRequest:
		return MsgAIBadRequest
	}
	return MsgAIUnavailable
}
