// Package document parses raw prototype documents into shape-agnostic
// records.
//
// A document holds either a single record or a list of records. Each
// record carries a discriminant string naming the registered shape its
// payload deserializes into, a name, optional tags, and the remaining
// fields flattened into an untyped payload. Parsing makes no assumption
// about the payload's shape; shape resolution happens later in the
// loader pipeline.
//
// JSON documents are parsed with goccy/go-json; YAML twins of every
// recognized extension parse through yaml.v3 under the same
// single-or-list rule.
package document
