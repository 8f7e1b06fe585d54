// Package meta holds build identity shared by the CLI subcommands.
package meta

// Version is the release version reported by the CLI and the MCP
// server handshake.
const Version = "0.1.0"
