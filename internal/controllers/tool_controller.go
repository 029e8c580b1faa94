package controllers

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/services"
	"withings-mcp/internal/withings"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const authPrompt = "Please visit this URL to authorize:\n\n%s\n\nAfter authorization, you'll receive a code. Use it to get access tokens."

type ToolController struct {
	data    services.HealthDataServiceInterface
	export  services.ExportServiceInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewToolController(data services.HealthDataServiceInterface, export services.ExportServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *ToolController {
	return &ToolController{
		data:    data,
		export:  export,
		logger:  logger,
		metrics: metrics,
	}
}

// Middleware records the outcome and latency of every tool call. A result
// flagged IsError counts as a failure.
func (tc *ToolController) Middleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.Params.Name
		start := time.Now()
		result, err := next(ctx, req)
		elapsed := time.Since(start)

		failed := err != nil || (result != nil && result.IsError)
		tc.metrics.IncToolCalls(name, failed)
		tc.metrics.ObserveToolDuration(name, elapsed)
		if failed {
			tc.logger.Warnf(providers.TypeTool, "%s failed after %s: %s", name, elapsed, failureText(result, err))
		} else {
			tc.logger.Debugf(providers.TypeTool, "%s done in %s", name, elapsed)
		}
		return result, err
	}
}

func failureText(result *mcp.CallToolResult, err error) string {
	if err != nil {
		return err.Error()
	}
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

// jsonResult renders v the way every data tool answers: 2-space indented JSON.
func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("json marshal: %w", err))
	}
	return mcp.NewToolResultText(string(b))
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

func respond(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(v), nil
}

// argString reads an optional argument. Numbers are accepted so that a Unix
// timestamp can be passed unquoted.
func argString(req mcp.CallToolRequest, key string) string {
	switch v := req.GetArguments()[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func rangeArgs(req mcp.CallToolRequest, startKey, endKey string) withings.Query {
	return withings.Query{Start: argString(req, startKey), End: argString(req, endKey)}
}

func (tc *ToolController) handleUserInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.UserInfo(ctx))
}

func (tc *ToolController) handleMeasurements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.Measurements(ctx, rangeArgs(req, "startdate", "enddate")))
}

func (tc *ToolController) handleActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.Activity(ctx, rangeArgs(req, "startdateymd", "enddateymd")))
}

func (tc *ToolController) handleSleepSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.SleepSummary(ctx, rangeArgs(req, "startdateymd", "enddateymd")))
}

func (tc *ToolController) handleSleepDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.SleepDetails(ctx, rangeArgs(req, "startdate", "enddate")))
}

func (tc *ToolController) handleWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.Workouts(ctx, rangeArgs(req, "startdateymd", "enddateymd")))
}

func (tc *ToolController) handleHeartRate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respond(tc.data.HeartRate(ctx, rangeArgs(req, "startdate", "enddate")))
}

func (tc *ToolController) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataType, err := req.RequireString("data_type")
	if err != nil {
		return errorResult(err), nil
	}
	return respond(tc.export.Export(ctx, services.ExportRequest{
		DataType: dataType,
		Query:    rangeArgs(req, "startdate", "enddate"),
		Format:   argString(req, "format"),
	}))
}

func (tc *ToolController) handleAuthorizationURL(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := tc.data.AuthorizationURL(argString(req, "scope"))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(authPrompt, url)), nil
}

func (tc *ToolController) handleExchangeCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return errorResult(err), nil
	}
	if _, err = tc.data.ExchangeCode(ctx, code); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(tc.data.TokenStatus()), nil
}
