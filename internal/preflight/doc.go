// Package preflight provides readiness checks for the external tools and
// filesystem paths echosurvey depends on.
//
// The doctor command prints every result; pipeline commands call
// CheckDirectoryAccess on the survey root before taking the run lock.
package preflight
