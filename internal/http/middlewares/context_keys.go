package middlewares

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxUserName  = "auth.name"
	CtxRole      = "auth.role"
)
