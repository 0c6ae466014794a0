package handlers

import (
	"log/slog"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/freightboard/dashboard-api/internal/response"
)

// clock seam for request-scoped date resolution.
var timeNow = time.Now

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	WidgetSvc       WidgetService
	GridCtl         GridController
	AISvc           AIService
	SourceSvc       SourceService
}
