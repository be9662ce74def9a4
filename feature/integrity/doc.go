// Package integrity provides health checks for an enchantment configuration
// directory and the systems around it.
//
// # Checks Provided
//
//   - Files: Checks that all six table files exist. Fix creates them with their header.
//   - Registry: Compares the tables with the registry (missing ids, unknown ids,
//     one-way incompatibilities). Fix fills the rows missing for registry ids.
//   - Schema: Validates that the registry table has id and max_level columns of
//     the expected types. Fix creates the table or adds missing columns. Skipped
//     unless the registry is database backed.
//   - Storage: Checks that the backup bucket exists. Fix creates it.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/files : Runs the files check (supports ?fix=true).
//   - GET /integrity/registry : Runs the registry check (supports ?fix=true).
//   - GET /integrity/schema : Runs the schema check (supports ?fix=true).
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
package integrity
