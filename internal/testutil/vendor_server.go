package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
)

// Reply is one scripted vendor answer. Body is marshalled as the envelope
// body; Raw, when set, is sent verbatim instead of an envelope.
type Reply struct {
	Status int
	Body   any
	Error  string
	Raw    string
}

type VendorRequest struct {
	Method        string
	Path          string
	Action        string
	Params        url.Values
	Authorization string
}

// VendorServer is an httptest stand-in for the Withings API. Replies are
// queued per path and action; the last reply repeats once the queue drains.
type VendorServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string][]Reply
	requests []VendorRequest
}

func NewVendorServer(t *testing.T) *VendorServer {
	t.Helper()
	s := &VendorServer{replies: make(map[string][]Reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *VendorServer) On(path, action string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path+" "+action] = append(s.replies[path+" "+action], replies...)
}

// Requests returns the recorded calls to path and action; an empty action
// matches every action.
func (s *VendorServer) Requests(path, action string) []VendorRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []VendorRequest
	for _, r := range s.requests {
		if r.Path == path && (action == "" || r.Action == action) {
			out = append(out, r)
		}
	}
	return out
}

func (s *VendorServer) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action := r.Form.Get("action")

	s.mu.Lock()
	s.requests = append(s.requests, VendorRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Action:        action,
		Params:        r.Form,
		Authorization: r.Header.Get("Authorization"),
	})
	key := r.URL.Path + " " + action
	queue := s.replies[key]
	var reply Reply
	found := len(queue) > 0
	if found {
		reply = queue[0]
		if len(queue) > 1 {
			s.replies[key] = queue[1:]
		}
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "no reply scripted for "+key, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if reply.Raw != "" {
		_, _ = w.Write([]byte(reply.Raw))
		return
	}

	env := map[string]any{"status": reply.Status}
	if reply.Body != nil {
		env["body"] = reply.Body
	}
	if reply.Error != "" {
		env["error"] = reply.Error
	}
	data, err := json.Marshal(env)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}

// TokenReply is a successful requesttoken body.
func TokenReply(access, refresh string, expiresIn int) Reply {
	return Reply{Body: map[string]any{
		"userid":        "12345",
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    expiresIn,
		"scope":         "user.info,user.metrics,user.activity",
		"token_type":    "Bearer",
	}}
}
