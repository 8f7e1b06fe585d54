package redshiftmcp

// ExecuteSQLInput is the input for the ExecuteSQL tool.
type ExecuteSQLInput struct {
	SQL string `json:"sql"`
}

// ExecuteSQLOutput is the output of the ExecuteSQL tool. All errors
// (validation rejections, suspicious-pattern rejections, Redshift errors,
// Go errors) are placed in Error. The error message is evaluated against
// error_prompts and matching prompt messages are appended.
type ExecuteSQLOutput struct {
	Columns         []string                 `json:"columns"`
	Rows            []map[string]interface{} `json:"rows"`
	ExecutionTimeMs int64                    `json:"execution_time_ms"`
	Error           string                   `json:"error,omitempty"`
}

// ListDatabasesInput is the input for the ListDatabases tool.
type ListDatabasesInput struct {
	ForceRefresh bool `json:"force_refresh"`
}

// RedshiftDatabase is one row of SVV_REDSHIFT_DATABASES. Pointer fields
// are NULL-able in the view.
type RedshiftDatabase struct {
	DatabaseName           string  `json:"database_name"`
	DatabaseOwner          *int64  `json:"database_owner"`
	DatabaseType           *string `json:"database_type"`
	DatabaseACL            *string `json:"database_acl"`
	DatabaseOptions        *string `json:"database_options"`
	DatabaseIsolationLevel *string `json:"database_isolation_level"`
}

// ListDatabasesOutput is the output of the ListDatabases tool.
type ListDatabasesOutput struct {
	Databases []RedshiftDatabase `json:"databases"`
	Error     string             `json:"error,omitempty"`
}

// ListSchemasInput is the input for the ListSchemas tool.
type ListSchemasInput struct {
	Database     string `json:"database"`
	ForceRefresh bool   `json:"force_refresh"`
}

// RedshiftSchema is one row of SVV_ALL_SCHEMAS.
type RedshiftSchema struct {
	DatabaseName   string  `json:"database_name"`
	SchemaName     string  `json:"schema_name"`
	SchemaOwner    *int64  `json:"schema_owner"`
	SchemaType     *string `json:"schema_type"`
	SchemaACL      *string `json:"schema_acl"`
	SourceDatabase *string `json:"source_database"`
	SchemaOption   *string `json:"schema_option"`
}

// ListSchemasOutput is the output of the ListSchemas tool.
type ListSchemasOutput struct {
	Schemas []RedshiftSchema `json:"schemas"`
	Error   string           `json:"error,omitempty"`
}

// ListTablesInput is the input for the ListTables tool.
type ListTablesInput struct {
	Database     string `json:"database"`
	Schema       string `json:"schema"`
	ForceRefresh bool   `json:"force_refresh"`
}

// RedshiftTable is one row of SVV_ALL_TABLES.
type RedshiftTable struct {
	DatabaseName string  `json:"database_name"`
	SchemaName   string  `json:"schema_name"`
	TableName    string  `json:"table_name"`
	TableACL     *string `json:"table_acl"`
	TableType    *string `json:"table_type"`
	Remarks      *string `json:"remarks"`
}

// ListTablesOutput is the output of the ListTables tool.
type ListTablesOutput struct {
	Tables []RedshiftTable `json:"tables"`
	Error  string          `json:"error,omitempty"`
}

// ListColumnsInput is the input for the ListColumns tool.
type ListColumnsInput struct {
	Database     string `json:"database"`
	Schema       string `json:"schema"`
	Table        string `json:"table"`
	ForceRefresh bool   `json:"force_refresh"`
}

// RedshiftColumn is one row of SVV_ALL_COLUMNS.
type RedshiftColumn struct {
	DatabaseName           string  `json:"database_name"`
	SchemaName             string  `json:"schema_name"`
	TableName              string  `json:"table_name"`
	ColumnName             string  `json:"column_name"`
	OrdinalPosition        *int64  `json:"ordinal_position"`
	ColumnDefault          *string `json:"column_default"`
	IsNullable             *string `json:"is_nullable"`
	DataType               *string `json:"data_type"`
	CharacterMaximumLength *int64  `json:"character_maximum_length"`
	NumericPrecision       *int64  `json:"numeric_precision"`
	NumericScale           *int64  `json:"numeric_scale"`
	Remarks                *string `json:"remarks"`
}

// ListColumnsOutput is the output of the ListColumns tool.
type ListColumnsOutput struct {
	Columns []RedshiftColumn `json:"columns"`
	Error   string           `json:"error,omitempty"`
}
