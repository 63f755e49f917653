// Package logs reads the ytqa log file for the "ytqa logs" command.
//
// Last returns the final lines of the file with bounded memory, and Follow
// polls for appended lines until its context ends. Both accept a Filter so
// output can be narrowed to one session.
package logs
