// Package catalog indexes the execution server's node type definitions: for
// each classType, the ordered input specs (name, declared type, default,
// enumerated options, force-input flag) and the ordered output type list.
//
// The catalog is populated once per connection lifetime from the server's
// object-info response and read by every other component: the parser uses it
// to classify inputs, the layout engine to size nodes, the type resolver to
// annotate edges, and the editing session to build fresh nodes.
//
// Population is asynchronous, so every lookup has a defined unpopulated
// answer ("", nil, false) and consumers degrade to wildcard behavior instead
// of failing. IsPopulated exists so callers can distinguish "server knows no
// such type" from "catalog not fetched yet" when it matters.
package catalog
