// Package orchestrator wires the parse → transform → decorate → render
// pipeline behind a single Generate call, applying defaults (vanilla
// renderer, light theme) while staying open to dependency injection.
package orchestrator
