// Package config loads the service configuration and the industry factor sets.
//
// Configuration is read from, in order of precedence:
//
//  1. Environment variables prefixed with PRICELENS_
//  2. config.yaml or configs/config.yaml in the working directory
//  3. Struct tag defaults
//
// Examples:
//
//	PRICELENS_SERVER_PORT=5000
//	PRICELENS_PATHS_DATA_DIR=/srv/pricelens/data
//	PRICELENS_PATHS_INDUSTRIES_FILE=/srv/pricelens/industries.yaml
//	PRICELENS_MODEL_ALPHA=1.0
//
// Industry factor sets come from an embedded industries.yaml unless an
// override file is configured. Looking up an industry that is not configured
// yields an empty configuration rather than an error.
package config
