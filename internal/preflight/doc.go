// Package preflight provides readiness checks for the filesystem paths and
// external binaries audiodupes depends on.
//
// The scan command runs RunAll before fingerprinting so that an unwritable
// cache directory is reported once up front instead of per file. The deps
// command uses CheckSystemDeps to show binary availability.
package preflight
