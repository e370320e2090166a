// Package io provides JSON import and export for milestone record files.
//
// # Overview
//
// Record files are how timelines travel outside the store: fixtures for the
// CLI, seed data for the in-memory store, and exports of a user's journey.
//
// # JSON Format
//
// [ReadJSON] accepts a flat array, a wrapped array, or the grouped shape the
// journey screens use:
//
//	{
//	  "jobs": [
//	    {"id": "acme", "meta": {"title": "Engineer", "company": "Acme", "startDate": "2021-03"},
//	     "children": [{"id": "api", "type": "project", "meta": {"title": "API"}}]}
//	  ],
//	  "education": [
//	    {"id": "uni", "meta": {"title": "BSc", "degree": "BSc", "start": "2016", "end": "2020"}}
//	  ]
//	}
//
// # Record Fields
//
// Required:
//   - id: Unique string identifier
//
// Optional:
//   - parentId: Owning milestone (absent for roots)
//   - type: Category discriminant; inferred from meta when absent
//   - meta: Freeform payload. title, startDate/endDate (or legacy start/end)
//     and the category hint fields are read by the layout engine.
//   - children: Embedded owned records
//
// # Export
//
// [WriteJSON] and [ExportJSON] always write the wrapped form, which
// re-imports unchanged.
//
//	err := io.ExportJSON(records, "journey.json")
package io
