// Package formconfig loads declarative form documents. A document is YAML
// (or JSON, which YAML accepts) with top level "forms", "tables" and
// "uploads" maps keyed by id. Field entries mirror model.Field; option lists
// and named transforms are resolved while loading so the returned models are
// ready for binding.
package formconfig
