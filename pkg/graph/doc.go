// Package graph defines the design graph types for Lignin.
// The design graph is an immutable DAG of parts, transforms and groups
// that represents a woodworking design. It is built by the engine and
// turned into a pickable scene by the tessellate package.
package graph
