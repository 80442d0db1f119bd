// Package command defines the websnap CLI commands.
//
// Commands are built on urfave/cli/v2:
//
//   - root.go: application, global flags, shared helpers
//   - inspect.go: summarize a snapshot file
//   - verify.go: structural verification of a snapshot file
//   - store.go: snapshot store management (list, info, import, export,
//     prune, delete)
//   - version.go: build information
//
// Commands parse flags, call into the snapshot codec or store, and
// format results through the output package.
package command
