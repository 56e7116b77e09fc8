package recordtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/servicenow-mcp/servicenow"
)

// ReadRecord returns the first record whose field equals value.
func (s *Service) ReadRecord(ctx context.Context, in *ReadRecordInput) *Output {
	result := s.gateway.FetchRecords(ctx, in.Table, servicenow.ExactMatch(in.Field, in.Value), "")
	if result.Failed() {
		return failure("Error reading record: %s", result.Error)
	}
	record, ok := result.First()
	if !ok {
		return text(fmt.Sprintf("Record with field %s=%s not found in table %s", in.Field, in.Value, in.Table))
	}
	return text(pretty(record))
}

// ReadMultipleRecords returns every record matching the encoded query.
func (s *Service) ReadMultipleRecords(ctx context.Context, in *ReadRecordsInput) *Output {
	limit := in.Limit
	if limit == "" {
		limit = DefaultLimit
	}
	result := s.gateway.FetchRecords(ctx, in.Table, servicenow.EncodedQuery(in.Query), limit)
	if result.Failed() {
		return failure("Error reading records: %s", result.Error)
	}
	if len(result.Records) == 0 {
		return text(fmt.Sprintf("No records found for query %s on table %s", in.Query, in.Table))
	}
	return text(pretty(result.Records))
}

// UpdateRecord parses the fields payload and patches the record.
func (s *Service) UpdateRecord(ctx context.Context, in *UpdateRecordInput) *Output {
	fields, err := servicenow.ParseFields(in.Fields)
	if err != nil {
		if servicenow.IsFieldsError(err) {
			return failure("Error processing update: %s", err.Error())
		}
		return failure("Error updating record: %s", err.Error())
	}
	result := s.gateway.UpdateRecord(ctx, in.Table, in.SysID, fields)
	if result.Failed() {
		return failure("Error updating record: %s", result.Error)
	}
	return text("Record successfully updated:\n" + written(result))
}

// CreateRecord parses the fields payload and inserts a record.
func (s *Service) CreateRecord(ctx context.Context, in *CreateRecordInput) *Output {
	fields, err := servicenow.ParseFields(in.Fields)
	if err != nil {
		if servicenow.IsFieldsError(err) {
			return failure("Error processing creation: %s", err.Error())
		}
		return failure("Error creating record: %s", err.Error())
	}
	result := s.gateway.CreateRecord(ctx, in.Table, fields)
	if result.Failed() {
		return failure("Error creating record: %s", result.Error)
	}
	return text("Record successfully created:\n" + written(result))
}

// written renders the record returned by a write the way the instance
// shaped it: an array envelope stays an array, an object stays an object.
func written(result *servicenow.Result) string {
	if result.Collection {
		return pretty(result.Records)
	}
	switch len(result.Records) {
	case 0:
		return "null"
	case 1:
		return pretty(result.Records[0])
	}
	return pretty(result.Records)
}

// pretty renders v as JSON with two-space indentation, keeping the record's
// own field order and leaving HTML characters unescaped.
func pretty(v interface{}) string {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func text(message string) *Output {
	return &Output{Text: message}
}

func failure(format string, message string) *Output {
	return &Output{Text: fmt.Sprintf(format, message), IsError: true}
}
