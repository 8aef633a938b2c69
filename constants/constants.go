package constants

// General

const (
	TimeFormatCalendarDate = "2006-01-02" // accreditation valid_until dates and export partition dirs
	EnvVarPrefix           = "ML"         // prefix for environment variables in twelveFactorMode
)

// Env vars recognised in twelveFactorMode

const (
	EnvVarTwelveFactorMode = EnvVarPrefix + "_12FACTOR_MODE"
	EnvVarCommand          = EnvVarPrefix + "_COMMAND"
	EnvVarLogLevel         = EnvVarPrefix + "_LOG_LEVEL"
	EnvVarStackDump        = EnvVarPrefix + "_STACK_DUMP"
	EnvVarBucket           = EnvVarPrefix + "_BUCKET"
	EnvVarRegion           = EnvVarPrefix + "_REGION"
	EnvVarInputPrefix      = EnvVarPrefix + "_INPUT_PREFIX"
	EnvVarOutputPrefix     = EnvVarPrefix + "_OUTPUT_PREFIX"
	EnvVarArchivePrefix    = EnvVarPrefix + "_ARCHIVE_PREFIX"
	EnvVarMonthsAhead      = EnvVarPrefix + "_MONTHS"
	EnvVarFilterRule       = EnvVarPrefix + "_FILTER_RULE"
	EnvVarAthenaDatabase   = EnvVarPrefix + "_ATHENA_DATABASE"
	EnvVarAthenaTable      = EnvVarPrefix + "_ATHENA_TABLE"
	EnvVarAthenaWorkgroup  = EnvVarPrefix + "_ATHENA_WORKGROUP"
	EnvVarResultsPrefix    = EnvVarPrefix + "_RESULTS_PREFIX"
	EnvVarPollInterval     = EnvVarPrefix + "_POLL_INTERVAL"
	EnvVarMaxInvocation    = EnvVarPrefix + "_MAX_INVOCATION_DURATION"
	EnvVarSourceBucket     = EnvVarPrefix + "_SOURCE_BUCKET" // trigger identity when not running off an S3 event
	EnvVarSourceKey        = EnvVarPrefix + "_SOURCE_KEY"
	EnvVarEventID          = EnvVarPrefix + "_EVENT_ID"
)

// Action commands usable via EnvVarCommand

const (
	ActionCommandFilter = "filter"
	ActionCommandExport = "export"
)

// Filter action

const (
	FilteredFileNameSuffix = "_filtered"
	FilteredFileNameExt    = "ndjson"
	ContentTypeNdjson      = "application/x-ndjson"
	DefaultMonthsAhead     = 6
)

// Export action

const (
	MarkerFileName                = "marker.json"
	ContentTypeJson               = "application/json"
	DefaultAthenaWorkgroup        = "primary"
	DefaultPollIntervalSeconds    = 1
	PollIntervalMaxSeconds        = 10
	PollIntervalBackoffFactor     = 1.7
	DefaultMaxInvocationSeconds   = 300
	InvocationDeadlineHeadroomSec = 10 // leave headroom so we suspend cleanly instead of being killed mid-poll
)
