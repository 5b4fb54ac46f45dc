// Package testsupport provides fakes and fixtures shared by package tests: an
// in-memory bus backend and helper-script scaffolding.
package testsupport
