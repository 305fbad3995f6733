package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of tabular output.
	OutputMode string

	// JoinPolicy represents how one metric record is chosen per region.
	JoinPolicy string

	// UnmatchedPolicy represents what happens to regions without metrics.
	UnmatchedPolicy string

	// DatabaseBackend represents the database backend for the metrics store.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All join policies supported.
const (
	LatestJoin JoinPolicy = "latest" // default
	YearJoin   JoinPolicy = "year"
	SingleJoin JoinPolicy = "single"
)

// All unmatched policies supported.
const (
	IncludeUnmatched UnmatchedPolicy = "include" // default
	ExcludeUnmatched UnmatchedPolicy = "exclude"
)

// All metrics store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default, metrics come from a file
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidJoinPolicies lists all valid join policies.
var ValidJoinPolicies = map[JoinPolicy]struct{}{
	LatestJoin: {},
	YearJoin:   {},
	SingleJoin: {},
}

// ValidUnmatchedPolicies lists all valid unmatched policies.
var ValidUnmatchedPolicies = map[UnmatchedPolicy]struct{}{
	IncludeUnmatched: {},
	ExcludeUnmatched: {},
}

// ValidDatabaseBackends lists all valid metrics store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Fixed labels used in rendered output.
const (
	NotAvailable  = "N/A"
	LegendCaption = "Investment Levels ($)"
	TooltipAlias  = "Province:"
	ChartTitle    = "Investment Over Time"
	ChartXAxis    = "Year"
	ChartYAxis    = "Investment ($)"
)
