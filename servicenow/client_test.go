package servicenow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

func newTestStore(t *testing.T, status int, body string) (*Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(Instance{Name: "dev1", BaseURL: srv.URL}, Credentials{Username: "admin", Password: "s3cret"})
	return client, &captured
}

func TestInstance_URL(t *testing.T) {
	assert.EqualValues(t, "https://dev1.service-now.com", Instance{Name: "dev1"}.URL())
	assert.EqualValues(t, "http://localhost:8080", Instance{Name: "dev1", BaseURL: "http://localhost:8080/"}.URL())
}

func TestResource_Path(t *testing.T) {
	assert.EqualValues(t, "/api/now/table/incident", Resource{Table: "incident"}.Path())
	assert.EqualValues(t, "/api/now/table/incident/abc", Resource{Table: "incident", RecordID: "abc"}.Path())
	assert.EqualValues(t, "/api/now/table/incident%3Fsysparm_fields=x%23", Resource{Table: "incident?sysparm_fields=x#"}.Path())
	assert.EqualValues(t, "/api/now/table/incident/a%2Fb", Resource{Table: "incident", RecordID: "a/b"}.Path())
}

func TestClient_EscapesTable(t *testing.T) {
	client, captured := newTestStore(t, http.StatusOK, `{"result":[]}`)
	result := client.FetchRecords(context.Background(), "incident?sysparm_fields=x#", EncodedQuery("active=true"), "5")
	require.False(t, result.Failed(), result.Error)
	require.Len(t, *captured, 1)
	assert.EqualValues(t, "/api/now/table/incident?sysparm_fields=x#", (*captured)[0].path)
	assert.EqualValues(t, "sysparm_query=active%3Dtrue&sysparm_limit=5", (*captured)[0].query)
}

func TestClient_Collection(t *testing.T) {
	testCases := []struct {
		description string
		body        string
		expect      bool
		expRecords  int
	}{
		{description: "array envelope", body: `{"result":[{"sys_id":"1"}]}`, expect: true, expRecords: 1},
		{description: "object envelope", body: `{"result":{"sys_id":"1"}}`, expRecords: 1},
		{description: "no result", body: `{}`},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			client, _ := newTestStore(t, http.StatusOK, tc.body)
			result := client.UpdateRecord(context.Background(), "incident", "1", Fields{"state": String("2")})
			require.False(t, result.Failed(), result.Error)
			assert.EqualValues(t, tc.expect, result.Collection)
			assert.Len(t, result.Records, tc.expRecords)
		})
	}
}

func TestClient_FetchRecords(t *testing.T) {
	testCases := []struct {
		description string
		status      int
		body        string
		query       Query
		limit       string
		expQuery    string
		expRecords  []string
		expError    string
	}{
		{
			description: "exact match",
			status:      http.StatusOK,
			body:        `{"result":[{"sys_id":"1","priority":"1"}]}`,
			query:       ExactMatch("priority", "1"),
			expQuery:    "sysparm_query=priority%3D1&sysparm_limit=",
			expRecords:  []string{`{"sys_id":"1","priority":"1"}`},
		},
		{
			description: "encoded query with limit",
			status:      http.StatusOK,
			body:        `{"result":[{"sys_id":"1"},{"sys_id":"2"}]}`,
			query:       EncodedQuery("active=true^priority<=2"),
			limit:       "10",
			expQuery:    "sysparm_query=active%3Dtrue%5Epriority%3C%3D2&sysparm_limit=10",
			expRecords:  []string{`{"sys_id":"1"}`, `{"sys_id":"2"}`},
		},
		{
			description: "zero matches",
			status:      http.StatusOK,
			body:        `{"result":[]}`,
			query:       ExactMatch("number", "INC0000000"),
			expQuery:    "sysparm_query=number%3DINC0000000&sysparm_limit=",
			expRecords:  []string{},
		},
		{
			description: "missing result member",
			status:      http.StatusOK,
			body:        `{}`,
			query:       ExactMatch("a", "b"),
			expQuery:    "sysparm_query=a%3Db&sysparm_limit=",
			expRecords:  []string{},
		},
		{
			description: "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"User Not Authenticated"}}`,
			query:       ExactMatch("a", "b"),
			expQuery:    "sysparm_query=a%3Db&sysparm_limit=",
			expError:    "HTTP error! status: 401",
		},
		{
			description: "server error",
			status:      http.StatusInternalServerError,
			body:        ``,
			query:       ExactMatch("a", "b"),
			expQuery:    "sysparm_query=a%3Db&sysparm_limit=",
			expError:    "HTTP error! status: 500",
		},
		{
			description: "malformed body",
			status:      http.StatusOK,
			body:        `<html>`,
			query:       ExactMatch("a", "b"),
			expQuery:    "sysparm_query=a%3Db&sysparm_limit=",
			expError:    "decode response: invalid character '<' looking for beginning of value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			client, captured := newTestStore(t, tc.status, tc.body)
			result := client.FetchRecords(context.Background(), "incident", tc.query, tc.limit)

			require.Len(t, *captured, 1)
			req := (*captured)[0]
			assert.EqualValues(t, http.MethodGet, req.method)
			assert.EqualValues(t, "/api/now/table/incident", req.path)
			assert.EqualValues(t, tc.expQuery, req.query)
			assert.EqualValues(t, "application/json", req.header.Get("Accept"))
			assert.EqualValues(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:s3cret")), req.header.Get("Authorization"))

			assert.EqualValues(t, tc.expError, result.Error)
			if tc.expError != "" {
				assert.True(t, result.Failed())
				assert.Empty(t, result.Records)
				return
			}
			actual := make([]string, 0, len(result.Records))
			for _, record := range result.Records {
				actual = append(actual, string(record))
			}
			assert.EqualValues(t, tc.expRecords, actual)
		})
	}
}

func TestClient_UpdateRecord(t *testing.T) {
	client, captured := newTestStore(t, http.StatusOK, `{"result":{"sys_id":"abc","state":"2"}}`)
	fields, err := ParseFields(`{"state":"2"}`)
	require.NoError(t, err)

	result := client.UpdateRecord(context.Background(), "incident", "abc", fields)
	require.False(t, result.Failed())
	require.Len(t, result.Records, 1)
	assert.JSONEq(t, `{"sys_id":"abc","state":"2"}`, string(result.Records[0]))

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.EqualValues(t, http.MethodPatch, req.method)
	assert.EqualValues(t, "/api/now/table/incident/abc", req.path)
	assert.EqualValues(t, "application/json", req.header.Get("Content-Type"))
	assert.EqualValues(t, "application/json", req.header.Get("Accept"))
	assert.JSONEq(t, `{"state":"2"}`, req.body)
}

func TestClient_CreateRecord(t *testing.T) {
	client, captured := newTestStore(t, http.StatusCreated, `{"result":{"sys_id":"new1"}}`)
	fields, err := ParseFields(`{"short_description":"test","urgency":1,"active":true,"parent":null}`)
	require.NoError(t, err)

	result := client.CreateRecord(context.Background(), "incident", fields)
	require.False(t, result.Failed())
	record, ok := result.First()
	require.True(t, ok)
	assert.EqualValues(t, `{"sys_id":"new1"}`, string(record))

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.EqualValues(t, http.MethodPost, req.method)
	assert.EqualValues(t, "/api/now/table/incident", req.path)
	assert.JSONEq(t, `{"short_description":"test","urgency":1,"active":true,"parent":null}`, req.body)
}

func TestClient_WriteErrors(t *testing.T) {
	client, _ := newTestStore(t, http.StatusForbidden, `{"error":{"message":"ACL"}}`)
	result := client.UpdateRecord(context.Background(), "incident", "abc", Fields{"state": String("2")})
	assert.EqualValues(t, "HTTP error! status: 403", result.Error)
	assert.Empty(t, result.Records)

	result = client.CreateRecord(context.Background(), "incident", Fields{})
	assert.EqualValues(t, "HTTP error! status: 403", result.Error)
	assert.Empty(t, result.Records)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(Instance{BaseURL: baseURL}, Credentials{Username: "admin", Password: "x"})
	ctx := context.Background()

	for _, result := range []*Result{
		client.FetchRecords(ctx, "incident", ExactMatch("a", "b"), ""),
		client.UpdateRecord(ctx, "incident", "abc", Fields{}),
		client.CreateRecord(ctx, "incident", Fields{}),
	} {
		assert.True(t, result.Failed())
		assert.NotEmpty(t, result.Error)
		assert.Empty(t, result.Records)
	}
}

func TestClient_Cancelled(t *testing.T) {
	client, captured := newTestStore(t, http.StatusOK, `{"result":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := client.FetchRecords(ctx, "incident", ExactMatch("a", "b"), "")
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "context canceled")
	assert.Empty(t, *captured)
}

func TestClient_MaxResponseBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]string{{"description": "a long enough value to be cut"}},
		})
	}))
	defer srv.Close()

	client := NewClient(Instance{BaseURL: srv.URL}, Credentials{}, WithMaxResponseBytes(16))
	result := client.FetchRecords(context.Background(), "incident", ExactMatch("a", "b"), "")
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "decode response")
}

func TestCredentials_String(t *testing.T) {
	creds := Credentials{Username: "admin", Password: "s3cret"}
	assert.EqualValues(t, "admin:***", creds.String())
	data, err := json.Marshal(creds)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
}
