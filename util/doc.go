// Package util holds small helpers shared across packages: size parsing
// for configuration values and a generic pointer constructor.
package util
