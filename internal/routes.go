package internal

import (
	"net/http"
	"withings-mcp/internal/controllers"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/structures"
)

// InitRoutes registers the side-channel HTTP routes: liveness and the OAuth
// redirect target. Tools are served over stdio, not here.
func InitRoutes(healthController *controllers.HealthController, callbackController *controllers.CallbackController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/health", http.HandlerFunc(healthController.Health))
	routers.Get(CallbackPath(conf), http.HandlerFunc(callbackController.Callback))
	return routers
}

// CallbackPath is the path component of the configured redirect URI.
func CallbackPath(conf *structures.Config) string {
	u, err := parseRedirect(conf.Withings.RedirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}
