// Package lsp implements a Language Server Protocol server for the Lume
// programming language.
//
// The server provides:
//   - Real-time diagnostics (parse and type errors) on open, change, save,
//     and close
//   - Hover information for types, fields, functions, and path segments
//
// The server communicates via JSON-RPC 2.0 over stdio and implements LSP
// 3.16. It leverages the internal/compiler package for parsing and type
// checking to ensure the diagnostics shown in an editor match what a batch
// compile of the same workspace would produce.
//
// # Architecture
//
// The server consists of:
//   - Server: protocol dispatch, the glsp.Handler methods bound to LSP
//     lifecycle and document-sync notifications
//   - Workspace: tracks the workspace root, the open-document overlay, and
//     the most recent checked package graph and Symbol Index
//   - Vfs: in-memory overlay of open-document content, superseding on-disk
//     content for any file currently open in the editor
//   - SymbolIndex: positional lookup from a byte offset to the smallest
//     enclosing symbol, built fresh from the HIR after every compile
//   - DiagnosticRouter: lowers compiler diagnostics into LSP
//     textDocument/publishDiagnostics notifications and tracks which files
//     need an empty notification to clear now-stale diagnostics
//   - HoverResolver: renders a Symbol Index entry into Markdown hover
//     content
//
// # Usage
//
// The server is typically started via the lume-lsp command:
//
//	lume-lsp [options]
//
// The server communicates over stdio (implicit, no flag required).
//
// For debugging:
//
//	lume-lsp -v -v -log-file /tmp/lume-lsp.log
//
// # Limitations
//
// The server implements LSP 3.16, which does not support position encoding
// negotiation (added in LSP 3.17). UTF-16 encoding is assumed for all
// character positions. The glsp library does not yet support LSP 3.17.
//
// There is no debouncing, request cancellation, or incremental
// recompilation: every didOpen/didChange/didSave/didClose re-checks the
// whole workspace synchronously before a response or notification is sent.
// There is no multi-root workspace support; the server tracks a single
// workspace root, set from the first workspace folder supplied in the
// initialize request (or, failing that, rootUri/rootPath).
//
// Only file:// URIs are recognized as Lume source; other URI schemes are
// rejected by isLumeURI and produce no diagnostics or hover results.
package lsp
