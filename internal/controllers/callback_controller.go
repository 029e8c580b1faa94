package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/services"
)

// CallbackController receives the OAuth redirect and exchanges the code.
// The outcome of each completed attempt is published on Done.
type CallbackController struct {
	service services.HealthDataServiceInterface
	logger  providers.Logger

	mu    sync.Mutex
	state string
	done  chan error
}

func NewCallbackController(service services.HealthDataServiceInterface, logger providers.Logger) *CallbackController {
	return &CallbackController{
		service: service,
		logger:  logger,
		done:    make(chan error, 1),
	}
}

// ExpectState opens the callback for one authorization attempt. Until it is
// called, and again once an attempt finishes, every redirect is rejected.
func (cc *CallbackController) ExpectState(state string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.state = state
}

func (cc *CallbackController) Done() <-chan error {
	return cc.done
}

func (cc *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	cc.mu.Lock()
	expected := cc.state
	cc.mu.Unlock()
	if expected == "" {
		cc.logger.Warnf(providers.TypeAuth, "Callback received with no authorization in progress")
		http.Error(w, "No authorization in progress", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		cc.logger.Warnf(providers.TypeAuth, "Authorization denied: %s", reason)
		cc.finish(fmt.Errorf("authorization denied: %s", reason))
		http.Error(w, "Authorization failed: "+reason, http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	if q.Get("state") != expected {
		cc.logger.Warnf(providers.TypeAuth, "Callback with unexpected state ignored")
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	if _, err := cc.service.ExchangeCode(r.Context(), code); err != nil {
		cc.logger.Errorf(providers.TypeAuth, "Code exchange failed: %s", err)
		cc.finish(err)
		http.Error(w, "Token exchange failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	cc.logger.Infof(providers.TypeAuth, "Authorization complete, tokens saved to %s", cc.service.TokenStatus().TokenFile)
	cc.finish(nil)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Authorization complete. You can close this window.\n"))
}

// finish publishes the outcome and closes the callback until the next
// ExpectState.
func (cc *CallbackController) finish(err error) {
	cc.mu.Lock()
	cc.state = ""
	cc.mu.Unlock()
	select {
	case cc.done <- err:
	default:
	}
}
