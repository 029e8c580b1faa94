package controllers

import (
	"withings-mcp/internal/providers"
	"withings-mcp/internal/services"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func readOnly() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
}

func dataTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, readOnly()...)
	return mcp.NewTool(name, append(all, opts...)...)
}

// Tools lists every tool the server exposes, in registration order.
func (tc *ToolController) Tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool:    dataTool("get_user_info", "Get user device information from Withings account."),
			Handler: tc.handleUserInfo,
		},
		{
			Tool: dataTool("get_measurements",
				"Get body measurements (weight, body fat %, muscle mass, bone mass, BP, heart rate, SpO2, temperature). "+
					"Returns last 30 days by default. Data is summarized per measurement with human-readable units.",
				mcp.WithString("startdate", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
				mcp.WithString("enddate", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleMeasurements,
		},
		{
			Tool: dataTool("get_activity",
				"Get daily activity summary (steps, calories, distance in km, active minutes, elevation, heart rate). "+
					"Returns last 7 days by default.",
				mcp.WithString("startdateymd", mcp.Description("Start date (YYYY-MM-DD). Defaults to 7 days ago.")),
				mcp.WithString("enddateymd", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleActivity,
		},
		{
			Tool: dataTool("get_sleep_summary",
				"Get nightly sleep summary (total/deep/light/REM/awake hours, sleep score, heart rate, breathing disturbances). "+
					"Returns last 7 days by default.",
				mcp.WithString("startdateymd", mcp.Description("Start date (YYYY-MM-DD). Defaults to 7 days ago.")),
				mcp.WithString("enddateymd", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleSleepSummary,
		},
		{
			Tool: dataTool("get_sleep_details",
				"Get detailed sleep phases (light/deep/REM/awake transitions) and heart rate samples for a single night. "+
					"Returns last night by default.",
				mcp.WithString("startdate", mcp.Description("Start date (YYYY-MM-DD). Defaults to yesterday.")),
				mcp.WithString("enddate", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleSleepDetails,
		},
		{
			Tool: dataTool("get_workouts",
				"Get workout sessions (type, duration, calories, distance, heart rate, SpO2). Returns last 30 days by default.",
				mcp.WithString("startdateymd", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
				mcp.WithString("enddateymd", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleWorkouts,
		},
		{
			Tool: dataTool("get_heart_rate",
				"Get heart rate data with hourly aggregation (avg/min/max per hour). Returns today by default. "+
					"Multi-day queries return daily summaries instead.",
				mcp.WithString("startdate", mcp.Description("Start date (YYYY-MM-DD). Defaults to today.")),
				mcp.WithString("enddate", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
			),
			Handler: tc.handleHeartRate,
		},
		{
			Tool: mcp.NewTool("export_csv",
				mcp.WithDescription("Export health data to a CSV (or XLSX) file in the export directory. Returns the file path. "+
					"Use after fetching data with the other tools."),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithString("data_type", mcp.Required(), mcp.Description("Type of data to export."), mcp.Enum(services.DataTypes...)),
				mcp.WithString("startdate", mcp.Description("Start date (YYYY-MM-DD).")),
				mcp.WithString("enddate", mcp.Description("End date (YYYY-MM-DD).")),
				mcp.WithString("format", mcp.Description("File format. Defaults to csv."), mcp.Enum(services.FormatCSV, services.FormatXLSX)),
			),
			Handler: tc.handleExport,
		},
		{
			Tool: mcp.NewTool("get_authorization_url",
				mcp.WithDescription("Get OAuth2 authorization URL to authenticate with Withings. "+
					"Use this if other tools return authentication errors."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("scope",
					mcp.Description("OAuth scopes (comma-separated): user.info, user.metrics, user.activity"),
					mcp.DefaultString(providers.DefaultScope),
				),
			),
			Handler: tc.handleAuthorizationURL,
		},
		{
			Tool: mcp.NewTool("exchange_authorization_code",
				mcp.WithDescription("Exchange the code received after authorization for access and refresh tokens. "+
					"Tokens are saved to the env file."),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("code", mcp.Required(), mcp.Description("Authorization code from the redirect URL.")),
			),
			Handler: tc.handleExchangeCode,
		},
	}
}
