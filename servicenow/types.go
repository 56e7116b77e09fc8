package servicenow

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultHostTemplate = "https://%s.service-now.com"
	tablePath           = "/api/now/table/"
)

// Credentials holds the HTTP Basic account used for every request.
type Credentials struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"-"`
}

// basicAuth returns the Authorization header value.
func (c Credentials) basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// String never reveals the password.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// Instance identifies the remote tenant.
type Instance struct {
	Name string
	// BaseURL overrides the https://{Name}.service-now.com endpoint.
	BaseURL string
}

// URL returns the base endpoint without a trailing slash.
func (i Instance) URL() string {
	if i.BaseURL != "" {
		return strings.TrimRight(i.BaseURL, "/")
	}
	return fmt.Sprintf(defaultHostTemplate, i.Name)
}

// Resource identifies a table or a single record within it.
type Resource struct {
	Table    string
	RecordID string
}

// Path returns the Table API path of the resource. Each segment is escaped
// so that "?", "#" or "/" in a name cannot change the request target.
func (r Resource) Path() string {
	if r.RecordID == "" {
		return tablePath + url.PathEscape(r.Table)
	}
	return tablePath + url.PathEscape(r.Table) + "/" + url.PathEscape(r.RecordID)
}

// Query is an encoded query forwarded verbatim as sysparm_query.
type Query string

// ExactMatch builds the field=value convenience form.
func ExactMatch(field, value string) Query {
	return Query(field + "=" + value)
}

// EncodedQuery wraps a raw encoded query.
func EncodedQuery(query string) Query {
	return Query(query)
}

func (q Query) String() string { return string(q) }

// Record is a single table row kept exactly as returned by the instance, so
// that rendering preserves field order and number formatting.
type Record json.RawMessage

// MarshalJSON returns the record in canonical form: field order and number
// literals are kept, string escapes are normalised.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return canonical(r)
}

// UnmarshalJSON stores a copy of data.
func (r *Record) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("servicenow.Record: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

type frame struct {
	object bool
	count  int
}

// canonical re-encodes a JSON document token by token. Strings are written
// with minimal escaping, so "x\/y" or "\u0041" come out as "x/y" and "A".
func canonical(data []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	buf := &bytes.Buffer{}
	var stack []*frame
	separate := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		switch {
		case top.object && top.count%2 == 1:
			buf.WriteByte(':')
		case top.count > 0:
			buf.WriteByte(',')
		}
		top.count++
	}
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch actual := token.(type) {
		case json.Delim:
			switch actual {
			case '{', '[':
				separate()
				stack = append(stack, &frame{object: actual == '{'})
			default:
				stack = stack[:len(stack)-1]
			}
			buf.WriteByte(byte(actual))
			continue
		case string:
			separate()
			if err := writeString(buf, actual); err != nil {
				return nil, err
			}
		case json.Number:
			separate()
			buf.WriteString(actual.String())
		case bool:
			separate()
			buf.WriteString(strconv.FormatBool(actual))
		case nil:
			separate()
			buf.WriteString("null")
		}
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, value string) error {
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Result is the uniform outcome of a gateway operation. When Error is set
// Records is empty; an empty Records without Error means zero matches.
type Result struct {
	Records    []Record
	Error      string
	Collection bool // the instance answered with an array envelope
}

// Failed reports whether the operation did not complete successfully.
func (r *Result) Failed() bool { return r.Error != "" }

// First returns the first record, if any.
func (r *Result) First() (Record, bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

func errorResult(message string) *Result {
	return &Result{Records: []Record{}, Error: message}
}

func statusError(code int) *Result {
	return errorResult(fmt.Sprintf("HTTP error! status: %d", code))
}

// tableResponse is the Table API envelope.
type tableResponse struct {
	Result json.RawMessage `json:"result"`
}

// collection reports whether the result member is an array.
func (t *tableResponse) collection() bool {
	raw := bytes.TrimSpace(t.Result)
	return len(raw) > 0 && raw[0] == '['
}

// records normalises the result member: an array yields its elements, an
// object yields one record, anything else yields none.
func (t *tableResponse) records() ([]Record, error) {
	raw := bytes.TrimSpace(t.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Record{}, nil
	}
	switch raw[0] {
	case '[':
		var ret []Record
		if err := json.Unmarshal(raw, &ret); err != nil {
			return nil, err
		}
		if ret == nil {
			ret = []Record{}
		}
		return ret, nil
	case '{':
		return []Record{Record(raw)}, nil
	}
	return []Record{}, nil
}
