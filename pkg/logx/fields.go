package logx

const (
	FieldAction          = "action"
	FieldActor           = "actor"
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldDealID          = "deal-id"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldFromStatus      = "from-status"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldItemID          = "item-id"
	FieldOfferID         = "offer-id"
	FieldRank            = "rank"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldToStatus        = "to-status"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
