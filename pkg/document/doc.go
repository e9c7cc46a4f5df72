// Package document defines the serialized form of a diagram.
//
// # Overview
//
// A [Document] is plain structural data: components, connections and groups
// that refer to one another by id, and components that refer to catalog
// definitions by definition id. It is what the HTTP API accepts and returns,
// what the stores persist, and what the CLI reads from disk.
//
// Transient editing state (selection, drafts, in-flight drag positions) is
// never part of a document.
//
// # Conversion
//
// [FromDiagram] snapshots a diagram; [Document.ToDiagram] rebuilds one
// against a catalog, validating every reference and every connection rule:
//
//	doc := document.FromDiagram(d, "Feed section")
//	data, err := document.Marshal(doc)
//
//	doc, err := document.ReadFile("feed.json")
//	d, err := doc.ToDiagram(catalog.Default())
//
// # Format
//
//	{
//	  "version": 1,
//	  "name": "Feed section",
//	  "components": [
//	    {"id": "…", "type": "tank", "position": {"x": 100, "y": 150}, "parameters": {"volume": 40}}
//	  ],
//	  "connections": [
//	    {"id": "…", "from": {"component": "…", "port": "outlet"}, "to": {…}, "kind": "pipe", "points": [...]}
//	  ],
//	  "groups": [{"id": "…", "name": "Group 1"}]
//	}
package document
