// Package extract contains adapters for the structured-extraction service:
// an external language model that converts free-form chat text into
// schema-conformant JSON objects. The package owns the prompt templates,
// the provider-neutral client interface, and the schema gate that decides
// whether an extracted object is usable.
package extract
