package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	ConfigFileError
	ReadFileError
	TokensReadError
	NewickWriteError

	// Logging errors
	LogFileError

	// Taxon table errors
	TaxonMalformedRowError
	TaxonDuplicateIDError
	TaxonNotFoundError

	// Tree index errors
	TreeDanglingParentError
	TreeCycleError

	// Pruning errors
	PruneEmptySelectionError
	PruneUnknownTaxonError
	PruneForestRejectedError
	PruneUnresolvedTokensError

	// Newick errors
	NewickSyntaxError

	// Source errors
	SourceDownloadError
	SourceExtractError
	SourceParseError
	SourceMissingFilesError
	SourceReleaseNotFoundError

	// Store errors
	DBConnectionError
	DBNotConnectedError
	DBSchemaError
	DBSaveError
	DBLoadError
	DBDatasetNotFoundError

	// Cache errors
	CacheOpenError
	CacheNotOpenError
	CacheReadError
	CacheWriteError
)
