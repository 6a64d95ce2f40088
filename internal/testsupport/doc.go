// Package testsupport holds helpers shared by package tests: isolated
// configurations, stub binaries on PATH, and placeholder video files.
package testsupport
