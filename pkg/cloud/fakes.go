package cloud

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FakeMetadataServer is an in-process IMDSv2 double. It issues session
// tokens, rejects metadata requests without a valid token and serves the
// configured fields.
type FakeMetadataServer struct {
	*httptest.Server

	mu          sync.Mutex
	tokens      map[string]time.Time
	token       string
	tokenStatus int
	fields      map[string]string
	statuses    map[string]int
	requests    []string
}

// DefaultFakeMetadata returns field bodies resembling a real instance,
// keyed by path relative to MetadataPath.
func DefaultFakeMetadata() map[string]string {
	return map[string]string{
		"ami-id":                        "ami-0abcdef1234567890",
		"instance-id":                   "i-0123456789abcdef0",
		"instance-type":                 "m5.large",
		"identity-credentials/ec2/info": `{"Code":"Success","LastUpdated":"2026-10-14T09:00:00Z","AccountId":"111122223333"}`,
		"hostname":                      "ip-10-0-1-23.us-west-2.compute.internal",
		"local-hostname":                "ip-10-0-1-23.us-west-2.compute.internal",
		"public-hostname":               "ec2-203-0-113-25.us-west-2.compute.amazonaws.com",
		"local-ipv4":                    "10.0.1.23",
		"public-ipv4":                   "203.0.113.25",
		"placement/availability-zone":   "us-west-2a",
		"placement/region":              "us-west-2",
		"security-groups":               "default\nweb",
		"iam/info":                      `{"Code":"Success","LastUpdated":"2026-10-14T09:00:00Z","InstanceProfileArn":"arn:aws:iam::111122223333:instance-profile/web","InstanceProfileId":"AIPAABCDEFGHIJKLMN123"}`,
	}
}

// NewFakeMetadataServer starts a server serving fields. Call Close when done.
func NewFakeMetadataServer(fields map[string]string) *FakeMetadataServer {
	s := &FakeMetadataServer{
		tokens:   make(map[string]time.Time),
		fields:   make(map[string]string, len(fields)),
		statuses: make(map[string]int),
	}
	for path, body := range fields {
		s.fields[path] = body
	}

	mux := http.NewServeMux()
	mux.HandleFunc(TokenPath, s.servePutToken)
	mux.HandleFunc(MetadataPath, s.serveGetMetadata)
	s.Server = httptest.NewServer(mux)
	return s
}

// SetToken makes the server hand out token instead of random ones.
func (s *FakeMetadataServer) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetTokenStatus makes token requests fail with status. Zero restores normal behavior.
func (s *FakeMetadataServer) SetTokenStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
}

// SetField serves body at path.
func (s *FakeMetadataServer) SetField(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[path] = body
}

// DeleteField makes path answer 404.
func (s *FakeMetadataServer) DeleteField(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fields, path)
}

// SetFieldStatus makes path fail with status.
func (s *FakeMetadataServer) SetFieldStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Requests returns "METHOD path" for every request received so far.
func (s *FakeMetadataServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *FakeMetadataServer) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
}

func (s *FakeMetadataServer) servePutToken(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ttl, err := strconv.Atoi(r.Header.Get(TokenTTLHeader))
	if err != nil || ttl < 1 || ttl > int(MaxTokenTTL/time.Second) {
		http.Error(w, "invalid "+TokenTTLHeader, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenStatus != 0 {
		http.Error(w, http.StatusText(s.tokenStatus), s.tokenStatus)
		return
	}
	token := s.token
	if token == "" {
		token = uuid.NewString()
	}
	s.tokens[token] = time.Now().Add(time.Duration(ttl) * time.Second)

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(token))
}

func (s *FakeMetadataServer) serveGetMetadata(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[r.Header.Get(TokenHeader)]
	if !ok || time.Now().After(expiry) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, MetadataPath)
	if status, ok := s.statuses[path]; ok {
		http.Error(w, http.StatusText(status), status)
		return
	}
	body, ok := s.fields[path]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(body))
}
