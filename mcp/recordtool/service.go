package recordtool

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/fluxor/model/types"
	"github.com/viant/servicenow-mcp/internal/conv"
	"github.com/viant/servicenow-mcp/servicenow"
)

// Gateway is the record store the tools delegate to; *servicenow.Client
// implements it.
type Gateway interface {
	FetchRecords(ctx context.Context, table string, query servicenow.Query, limit string) *servicenow.Result
	UpdateRecord(ctx context.Context, table, recordID string, fields servicenow.Fields) *servicenow.Result
	CreateRecord(ctx context.Context, table string, fields servicenow.Fields) *servicenow.Result
}

// Tool names.
const (
	ReadRecord          = "read-record"
	ReadMultipleRecords = "read-multiple-records"
	UpdateRecord        = "update-record"
	CreateRecord        = "create-record"
)

// DefaultLimit applies to read-multiple-records when no limit is supplied.
const DefaultLimit = "1"

const serviceName = "servicenow"

// validator is implemented by every tool input.
type validator interface {
	Validate() error
}

// Service exposes the four record tools as Fluxor actions.
type Service struct {
	gateway   Gateway
	sigs      types.Signatures
	executors map[string]types.Executable
}

// New builds the action service on top of gateway.
func New(gateway Gateway) *Service {
	s := &Service{
		gateway:   gateway,
		executors: map[string]types.Executable{},
	}

	type op struct {
		name string
		in   reflect.Type
		call func(ctx context.Context, in interface{}) *Output
		desc string
	}

	ops := []op{
		{
			name: ReadRecord,
			in:   reflect.TypeOf(&ReadRecordInput{}),
			call: func(ctx context.Context, in interface{}) *Output {
				return s.ReadRecord(ctx, in.(*ReadRecordInput))
			},
			desc: "Tool that connects to a ServiceNow instance and retrieves a complete record by providing the table and field names and value of the field to search. This allows for targeted data retrieval from any ServiceNow table without complex queries.",
		},
		{
			name: ReadMultipleRecords,
			in:   reflect.TypeOf(&ReadRecordsInput{}),
			call: func(ctx context.Context, in interface{}) *Output {
				return s.ReadMultipleRecords(ctx, in.(*ReadRecordsInput))
			},
			desc: "This tool retrieves multiple records from a specified table based on a encoded query provided by the user. This tool should be used when the user wants to recover many records rather than a single record, allowing for efficient retrieval of data sets matching specific criteria.",
		},
		{
			name: UpdateRecord,
			in:   reflect.TypeOf(&UpdateRecordInput{}),
			call: func(ctx context.Context, in interface{}) *Output {
				return s.UpdateRecord(ctx, in.(*UpdateRecordInput))
			},
			desc: "This tool updates a specific record in a ServiceNow table using the sys_id (unique identifier) and a JSON object containing the fields to be updated. It allows for targeted updates to any ServiceNow record without complex operations.",
		},
		{
			name: CreateRecord,
			in:   reflect.TypeOf(&CreateRecordInput{}),
			call: func(ctx context.Context, in interface{}) *Output {
				return s.CreateRecord(ctx, in.(*CreateRecordInput))
			},
			desc: "This tool creates a new record in a specified ServiceNow table using a JSON object containing the fields for the new record. It allows for the creation of new records in any ServiceNow table without complex operations.",
		},
	}

	outType := reflect.TypeOf(&Output{})
	for _, o := range ops {
		opCopy := o
		s.executors[opCopy.name] = func(ctx context.Context, input, output interface{}) error {
			param, err := bind(opCopy.in, input)
			if err != nil {
				return err
			}
			if v, ok := param.(validator); ok {
				if err := v.Validate(); err != nil {
					return fmt.Errorf("invalid %s arguments: %w", opCopy.name, err)
				}
			}
			res := opCopy.call(ctx, param)
			if output == nil {
				return nil
			}
			switch outPtr := output.(type) {
			case *Output:
				*outPtr = *res
			case **Output:
				*outPtr = res
			case *interface{}:
				*outPtr = res
			default:
				return conv.Convert(res, outPtr)
			}
			return nil
		}
		s.sigs = append(s.sigs, types.Signature{
			Name:        opCopy.name,
			Description: opCopy.desc,
			Input:       opCopy.in,
			Output:      outType,
		})
	}
	return s
}

// bind coerces input (typed pointer or generic map) into a new value of type in.
func bind(in reflect.Type, input interface{}) (interface{}, error) {
	if input != nil && reflect.TypeOf(input) == in {
		return input, nil
	}
	param := reflect.New(in.Elem()).Interface()
	if input == nil {
		return param, nil
	}
	if err := conv.Convert(input, param); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return param, nil
}

// ------------------------------------------------------------------
// types.Service implementation
// ------------------------------------------------------------------

func (s *Service) Name() string { return serviceName }

func (s *Service) Methods() types.Signatures { return s.sigs }

func (s *Service) Method(name string) (types.Executable, error) {
	if exec, ok := s.executors[name]; ok {
		return exec, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}
