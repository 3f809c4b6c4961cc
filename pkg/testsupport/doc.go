// Package testsupport holds fixtures and assertion helpers shared by package
// tests.
package testsupport
