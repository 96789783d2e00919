// Package main hosts the audiodupes CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the fingerprinting and clustering pipeline from the internal packages, and
// renders results. Keep this package lean: behaviour belongs in internal/,
// commands only wire it up and format output.
package main
