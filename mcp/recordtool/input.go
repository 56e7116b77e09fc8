package recordtool

import "fmt"

// ReadRecordInput selects a single record by exact field match.
type ReadRecordInput struct {
	Table string `json:"table" description:"Table name of the record to fetch"`
	Field string `json:"field" description:"field of the table to fetch"`
	Value string `json:"value" description:"Value of the field to fetch"`
}

func (i *ReadRecordInput) Validate() error {
	if i.Table == "" {
		return missing("table")
	}
	if i.Field == "" {
		return missing("field")
	}
	return nil
}

// ReadRecordsInput selects records with an encoded query.
type ReadRecordsInput struct {
	Table string `json:"table" description:"The table to retrieve the record from"`
	Query string `json:"query" description:"The servicenow encoded query to filter the records"`
	Limit string `json:"limit,omitempty" description:"Optional variable to specify the maximum number of records to retrieve"`
}

func (i *ReadRecordsInput) Validate() error {
	if i.Table == "" {
		return missing("table")
	}
	return nil
}

// UpdateRecordInput patches one record.
type UpdateRecordInput struct {
	SysID  string `json:"sys_id" description:"sys_id of the record to update"`
	Table  string `json:"table" description:"Table name of the record to update"`
	Fields string `json:"fields" description:"JSON string containing the fields and values to update"`
}

func (i *UpdateRecordInput) Validate() error {
	if i.Table == "" {
		return missing("table")
	}
	if i.SysID == "" {
		return missing("sys_id")
	}
	return nil
}

// CreateRecordInput inserts one record.
type CreateRecordInput struct {
	Table  string `json:"table" description:"Table name where the new record will be created"`
	Fields string `json:"fields" description:"JSON string containing the fields and values for the new record"`
}

func (i *CreateRecordInput) Validate() error {
	if i.Table == "" {
		return missing("table")
	}
	return nil
}

// Output is the caller-facing text of a tool invocation.
type Output struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError,omitempty"`
}

func missing(name string) error {
	return fmt.Errorf("%s is required", name)
}
