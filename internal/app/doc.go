// Package app wires the toolkit together for the command-line front: it
// configures logging, obtains a node type catalog (from a local dump or a
// live server), loads the field schema manifests, parses the workflow, runs
// layout and type resolution, analyzes the field mapping, and reports.
package app
