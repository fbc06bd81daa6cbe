// Package lumelsp is the module root for lume-lsp, a Language Server
// Protocol implementation for the Lume programming language.
//
// # Architecture Overview
//
// The module is organized into two tiers:
//
//	Foundation tier:
//	  - internal/compiler: Lume source parsing, HIR, and the TypeContext
//	    query surface (the compiler driver the Semantic Index drives)
//
//	Server tier:
//	  - lsp: the Semantic Index — VFS, HIR visitor, Symbol Index,
//	    Diagnostic Router, Workspace Controller, Hover Resolver, and
//	    Protocol Dispatcher
//
// # Entry Point
//
// The server is started from cmd/lume-lsp:
//
//	import "github.com/lume-lang/lume-lsp/lsp"
//
//	srv := lsp.NewServer(logger, workspaceRoot)
//	srv.RunStdio()
//
// # Subpackages
//
// See the individual package documentation for detailed usage:
//
//   - [github.com/lume-lang/lume-lsp/internal/compiler]: Lume front end
//   - [github.com/lume-lang/lume-lsp/lsp]: Language Server Protocol server
package lumelsp
