// Package preflight provides readiness checks for the programs, services, and
// directories ytqa depends on.
//
// The CLI "ytqa status" command renders every check. "ytqa shell" and
// "ytqa serve" run the local checks at startup and log failures as warnings
// so a missing tool is reported before the first action needs it.
package preflight
