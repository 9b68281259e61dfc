// Package paths provides the standard on-disk layout for embedkit data.
//
// Every component that touches disk resolves its location through this
// package so one override ($EMBEDKIT_DATA_DIR or the config tree) moves
// everything together:
//
//	<data root>/
//	  ├── definitions/   (provider definition files)
//	  ├── snapshots/     (saved session snapshots)
//	  └── cache/         (persistent response-cache database)
//
// Config values override these defaults; the functions here are the
// fallbacks those overrides default to.
package paths
