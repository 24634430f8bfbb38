package model

// Severity ranks how much attention a finding about a cleaned table needs.
type Severity int

const (
	// SeverityInfo records what cleaning did without calling for action.
	// Examples: dropped single-valued columns, removed duplicate rows.
	SeverityInfo Severity = iota

	// SeverityLow marks cosmetic issues.
	// Examples: column names that are hard to read.
	SeverityLow

	// SeverityMedium marks issues that downstream code has to handle.
	// Examples: columns left with mixed value types, renamed duplicate headers.
	SeverityMedium

	// SeverityHigh marks data that is likely still unusable.
	// Examples: columns where most values are still missing.
	SeverityHigh

	// SeverityCritical marks a cleaning run that destroyed the table.
	// Examples: every row or every column dropped.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Finding types produced by a cleaning run.
const (
	FindingEmptyResult         = "empty_result"
	FindingMissingRemaining    = "missing_remaining"
	FindingMixedTypes          = "mixed_types"
	FindingDuplicateColumnName = "duplicate_column_name"
	FindingLongColumnName      = "long_column_name"
	FindingSingleValuedColumn  = "single_valued_column"
	FindingMissingColumn       = "missing_column_dropped"
	FindingDuplicateRows       = "duplicate_rows"
	FindingPooledSubset        = "pooled_subset"
)

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
var findingInfoMapping = map[string]FindingInfo{
	FindingEmptyResult: {
		Severity:       SeverityCritical,
		Impact:         "Cleaning removed every row or every column; nothing is left to analyze.",
		Recommendation: "Raise the drop thresholds or exclude the columns that must be kept.",
	},
	FindingMissingRemaining: {
		Severity:       SeverityHigh,
		Impact:         "The column is still mostly empty after cleaning and will distort statistics.",
		Recommendation: "Impute the missing values or lower drop_threshold_cols to remove the column.",
	},
	FindingMixedTypes: {
		Severity:       SeverityMedium,
		Impact:         "The column holds values of different types and could not be given a compact dtype.",
		Recommendation: "Fix the source data or convert the column explicitly before analysis.",
	},
	FindingDuplicateColumnName: {
		Severity:       SeverityMedium,
		Impact:         "Several headers cleaned to the same name; later ones received their position as suffix.",
		Recommendation: "Rename the source columns so each header is unique.",
	},
	FindingLongColumnName: {
		Severity:       SeverityLow,
		Impact:         "Long column names are hard to read in code and reports.",
		Recommendation: "Shorten the name or enable abbreviations.",
	},
	FindingSingleValuedColumn: {
		Severity:       SeverityInfo,
		Impact:         "The column held a single value and carried no information.",
		Recommendation: "No action needed.",
	},
	FindingMissingColumn: {
		Severity:       SeverityInfo,
		Impact:         "The column was dropped because too many of its values were missing.",
		Recommendation: "Add the column to col_exclude if it must be kept.",
	},
	FindingDuplicateRows: {
		Severity:       SeverityInfo,
		Impact:         "Repeated rows were removed.",
		Recommendation: "Disable drop_duplicates if repeated rows are meaningful.",
	},
	FindingPooledSubset: {
		Severity:       SeverityInfo,
		Impact:         "Highly duplicated columns were folded into a single list-valued column.",
		Recommendation: "Add columns to the pool exclusion list if they must stay separate.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Review the cleaned table manually.",
	}
}
