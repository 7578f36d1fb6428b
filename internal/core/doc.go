// Package core provides the business logic for CRM import and export.
//
// The package has no transport dependencies. The web server, the crmport CLI
// and the tests all drive it through [Service] or the package-level entry
// points.
//
// # Entity Registry
//
// The four entity kinds (accounts, contacts, communications, opportunities)
// are registered at init time using [Register]. Each [EntityDefinition]
// carries the export file name, the column order, a row validator and a
// builder that turns a validated row into a [Record].
//
// # Import
//
// [ProcessImport] accepts a single CSV or a ZIP of CSVs:
//
//  1. The upload is unpacked into members (see the tabular package)
//  2. Members are ordered so accounts import before their dependents
//  3. Each member's type is detected from its name, then its headers
//  4. Rows are validated as a whole; any failure rejects the member
//  5. Valid rows are written, resolving companies and contacts by name
//
// A company referenced by a child row that does not exist yet is created as
// a Prospect account. Contacts are never created implicitly. Every outcome is
// reported in a [Report]; only a failure to start an import is a Go error.
//
// # Export
//
// [ExportAll] renders a full dump as a ZIP with one CSV per entity, with
// account and contact ids replaced by names. [ExportSample] renders the
// import template with example rows and a README.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, archive)
//   - IMP001: Too many concurrent imports
//   - UPL004-UPL005: Cancelled or timed out requests
//   - DB002-DB007: Store errors (constraints, connections, locks)
package core
