package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"scimrename/internal/retry"
	"scimrename/internal/scim"
)

const testToken = "test-token"

type patchCall struct {
	UID  string
	Body scim.PatchRequest
}

// fakeSCIM serves GET /v2/Users and PATCH /v2/Users/{uid} from memory and
// can be told to fail a page or a uid a number of times.
type fakeSCIM struct {
	mu sync.Mutex

	users         []scim.User
	listFailures  map[int]int
	patchFailures map[string]int

	listCalls    []int
	patchCalls   []patchCall
	unauthorized int
}

func newFakeSCIM(users []scim.User) *fakeSCIM {
	return &fakeSCIM{
		users:         users,
		listFailures:  map[int]int{},
		patchFailures: map[string]int{},
	}
}

func (f *fakeSCIM) start(t *testing.T) *scim.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/Users", f.handleList)
	mux.HandleFunc("PATCH /v2/Users/{uid}", f.handlePatch)

	server := httptest.NewServer(f.authorize(mux))
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	client := scim.NewClient(server.URL, testToken, logger)
	t.Cleanup(func() { client.Close() })
	return client
}

func (f *fakeSCIM) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			f.mu.Lock()
			f.unauthorized++
			f.mu.Unlock()
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeSCIM) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	startIndex, _ := strconv.Atoi(r.URL.Query().Get("startIndex"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	f.listCalls = append(f.listCalls, startIndex)

	if f.listFailures[startIndex] > 0 {
		f.listFailures[startIndex]--
		http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	from := startIndex - 1
	if from > len(f.users) {
		from = len(f.users)
	}
	to := from + count
	if to > len(f.users) {
		to = len(f.users)
	}
	resources := append([]scim.User{}, f.users[from:to]...)

	writeJSON(w, scim.ListResponse{
		Resources:    resources,
		StartIndex:   startIndex,
		ItemsPerPage: len(resources),
		TotalResults: len(f.users),
	})
}

func (f *fakeSCIM) handlePatch(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uid := r.PathValue("uid")
	var body scim.PatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.patchCalls = append(f.patchCalls, patchCall{UID: uid, Body: body})

	if f.patchFailures[uid] > 0 {
		f.patchFailures[uid]--
		http.Error(w, "conflict", http.StatusInternalServerError)
		return
	}

	writeJSON(w, scim.User{ID: uid, UserName: body.Operations[0].Value})
}

func (f *fakeSCIM) patchedUIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var uids []string
	for _, call := range f.patchCalls {
		uids = append(uids, call.UID)
	}
	return uids
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: retry.MaxRetries,
		BaseDelay:   time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func makeUsers(n int) []scim.User {
	users := make([]scim.User, 0, n)
	for i := 1; i <= n; i++ {
		id := strconv.Itoa(1130000000000 + i)
		users = append(users, scim.User{
			ID:          id,
			DisplayName: "User " + strconv.Itoa(i),
			UserName:    "user" + strconv.Itoa(i) + "@corp.example.com",
		})
	}
	return users
}

type answerPrompter struct {
	answer string
	asked  []string
}

func (p *answerPrompter) Ask(question string) (string, error) {
	p.asked = append(p.asked, question)
	return p.answer, nil
}
