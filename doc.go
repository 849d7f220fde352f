// Package pipetools provides tools for transforming structured documents
// with ingest pipelines.
//
// pipetools models a document as an ordered, typed tree, addresses fields
// inside it with dot-separated paths, and runs documents through pipelines
// of processors with per-step failure recovery. Externally-described
// pipelines (the JSON ingest-pipeline format) are parsed, validated, and
// converted into executable form against an extensible processor registry.
//
// # Overview
//
// The library consists of five primary packages:
//
//   - document: the ordered, typed document tree and its codecs
//   - fieldpath: parse and resolve field paths against documents
//   - pipeline: the processor contract and the pipeline engine
//   - processors: the built-in processors
//   - ingest: parse, validate, and convert external pipeline descriptions
//
// # Quick Start
//
// Parse an external pipeline description and run a document through it:
//
//	import (
//		"github.com/erraggy/pipetools/document"
//		"github.com/erraggy/pipetools/ingest"
//	)
//
//	pl, err := ingest.ParsePipeline(`{
//		"processors": [
//			{"json": {"field": "message"}},
//			{"remove": {"field": "message.raw", "ignore_missing": true}}
//		]
//	}`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	doc, err := document.FromJSON(payload)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := pl.Run(ctx, doc); err != nil {
//		log.Fatal(err)
//	}
//
// Validate a description without building anything:
//
//	result, err := ingest.Validate(raw)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Valid() {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
//
// Address a field directly:
//
//	p := fieldpath.MustParse("user.tags[0]")
//	el, err := p.Get(doc)
//
// # Document Package
//
// The document package defines Element, the closed set of value kinds a
// document may hold (null, booleans, integers, floats, strings, byte
// strings, arrays, and ordered mappings), and Document, the mapping at the
// root. Codecs convert documents to and from JSON, YAML, and msgpack while
// preserving mapping key order.
//
// # Fieldpath Package
//
// The fieldpath package parses textual field paths ("a.b[2].c") into typed
// segment lists and resolves them against documents: Get, Set (which
// auto-creates intermediate mappings), Remove, and Exists.
//
// # Pipeline Package
//
// The pipeline package defines the Processor interface and the engine that
// runs processors in order, honoring each step's condition, ignore_failure
// flag, and on_failure fallback pipeline. FieldProcessor captures the
// common read-transform-write shape of field-oriented processors.
//
// # Processors Package
//
// The processors package supplies the built-in steps: set, copy, remove,
// keep, rename, append, drop, fail, json, the typed conversions, and the
// case mappers.
//
// # Ingest Package
//
// The ingest package interprets external ingest-pipeline descriptions
// against a registry of processor kinds, aggregating every per-record
// error in one pass, and converts valid descriptions into executable
// pipelines. The default registry is immutable; derive modified registries
// with Copy.
package pipetools
