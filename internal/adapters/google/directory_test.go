package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"github.com/denhac/membership-sync/internal/ports/out/directory"
	"github.com/denhac/membership-sync/internal/ports/out/gateway"
)

func TestPaginate_ReportsProgressAndConcatenates(t *testing.T) {
	t.Parallel()

	pages := map[string]struct {
		items []string
		next  string
	}{
		"":   {items: []string{"a", "b"}, next: "p2"},
		"p2": {items: []string{"c"}, next: "p3"},
		"p3": {items: []string{"d"}},
	}
	type step struct{ done, est int }
	var steps []step

	got, err := paginate(context.Background(), func(done, est int) {
		steps = append(steps, step{done, est})
	}, func(_ context.Context, token string) ([]string, string, error) {
		p := pages[token]
		return p.items, p.next, nil
	})
	if err != nil {
		t.Fatalf("paginate err=%v", err)
	}
	if strings.Join(got, ",") != "a,b,c,d" {
		t.Fatalf("got=%v, want a,b,c,d", got)
	}
	want := []step{{1, 2}, {2, 3}, {3, 3}}
	if len(steps) != len(want) {
		t.Fatalf("steps=%v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps=%v, want %v", steps, want)
		}
	}
}

func TestPaginate_StopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := paginate(context.Background(), nil, func(_ context.Context, token string) ([]int, string, error) {
		if token == "" {
			return []int{1}, "next", nil
		}
		return nil, "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}

func newTestDirectory(t *testing.T, h http.HandlerFunc) *Directory {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	d, err := New(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(code int, msg string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": msg}}
}

func TestMembersOf_FollowsPageTokens(t *testing.T) {
	t.Parallel()

	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/groups/members@denhac.org/members") {
			writeJSON(w, http.StatusNotFound, apiError(404, "unexpected path "+r.URL.Path))
			return
		}
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"members":       []map[string]any{{"email": "ada@example.com"}},
				"nextPageToken": "t2",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"members": []map[string]any{{"email": "bob@example.com"}},
		})
	})

	got, err := d.MembersOf(context.Background(), "members@denhac.org", nil)
	if err != nil {
		t.Fatalf("MembersOf err=%v", err)
	}
	if strings.Join(got, ",") != "ada@example.com,bob@example.com" {
		t.Fatalf("members=%v, want ada and bob", got)
	}
}

func TestAddAndRemove_MapAlternateOutcomes(t *testing.T) {
	t.Parallel()

	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusConflict, apiError(409, "Member already exists."))
		case http.MethodDelete:
			writeJSON(w, http.StatusNotFound, apiError(404, "Resource Not Found: memberKey"))
		default:
			writeJSON(w, http.StatusInternalServerError, apiError(500, "unexpected"))
		}
	})

	if err := d.AddMember(context.Background(), "members@denhac.org", "ada@example.com"); !errors.Is(err, directory.ErrAlreadyMember) {
		t.Fatalf("AddMember err=%v, want ErrAlreadyMember", err)
	}
	if err := d.RemoveMember(context.Background(), "members@denhac.org", "ada@example.com"); !errors.Is(err, directory.ErrNotMember) {
		t.Fatalf("RemoveMember err=%v, want ErrNotMember", err)
	}
}

func TestAddMember_ServerErrorIsGatewayError(t *testing.T) {
	t.Parallel()

	d := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, apiError(403, "Not Authorized to access this resource/api"))
	})

	err := d.AddMember(context.Background(), "board@denhac.org", "ada@example.com")
	ge, ok := gateway.As(err)
	if !ok {
		t.Fatalf("err=%v, want gateway error", err)
	}
	if ge.Status != http.StatusForbidden || ge.Op != "members.insert" {
		t.Fatalf("gateway error=%+v, want 403 members.insert", ge)
	}
}
