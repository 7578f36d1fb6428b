package core

// importer.go drives a multi-member import.
//
// Members are processed strictly one after another, and rows within a
// member in file order, so a parent created by an earlier member is visible
// to every later one. There is no transaction: a row that fails to write is
// skipped and reported as a warning while the rest of the member proceeds.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/logging"
	"github.com/JonMunkholm/crmport/internal/tabular"
)

const undeterminedTypeMessage = "Could not determine data type from filename or headers"

// ProcessImport imports data, the raw bytes of a CSV or ZIP upload named
// filename, into store. Every outcome is reported through the returned
// Report; ProcessImport itself never fails.
func ProcessImport(ctx context.Context, store Store, data []byte, filename string) *Report {
	start := time.Now()
	log := logging.WithFields(ctx, "file", filename)
	log.Info("import started", "bytes", len(data))

	report := newReport()

	members, err := tabular.Unpack(filename, data)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			report.addError(tabular.ErrUnsupportedFormat.Error())
		} else {
			report.addError("Import failed: " + err.Error())
		}
		log.Warn("import rejected", "error", err)
		return report
	}

	res := newResolver(store)
	if err := res.warm(ctx); err != nil {
		report.addError("Import failed: " + err.Error())
		log.Error("cache warm-up failed", "error", err)
		return report
	}

	for _, m := range sortMembers(members) {
		if err := importMember(ctx, log, res, m, report); err != nil {
			break
		}
	}

	report.Success = len(report.Errors) == 0

	log.Info("import completed",
		"success", report.Success,
		"accounts", report.Imported[EntityAccounts],
		"contacts", report.Imported[EntityContacts],
		"communications", report.Imported[EntityCommunications],
		"opportunities", report.Imported[EntityOpportunities],
		"accounts_created", res.created,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report
}

// classify detects the member's entity type and returns its definition.
func classify(t *tabular.Table) (EntityDefinition, string, bool) {
	rule, ok := detect(t)
	if !ok {
		return EntityDefinition{}, "", false
	}
	def, ok := Get(rule.entity)
	return def, rule.name, ok
}

// importMember decodes, validates and writes one member. It returns a
// non-nil error only when ctx is done and the import must stop.
func importMember(ctx context.Context, log *slog.Logger, res *resolver, m tabular.Member, report *Report) error {
	t, err := tabular.Decode(m.Name, m.Content)
	if err != nil {
		report.addError(fmt.Sprintf("Error processing %s: %s", m.Name, err))
		log.Warn("member unreadable", "member", m.Name, "error", err)
		return nil
	}

	def, rule, ok := classify(t)
	if !ok {
		report.addWarning(fmt.Sprintf("Skipped %s: Could not determine data type", m.Name))
		log.Warn("member skipped", "member", m.Name, "headers", t.Headers)
		return nil
	}

	if verrs := ValidateTable(def, t); len(verrs) > 0 {
		for _, ve := range verrs {
			report.addError(m.Name + ": " + ve.Error())
		}
		log.Info("member rejected",
			"member", m.Name,
			"type", def.Type,
			"rows", len(t.Rows),
			"validation_errors", len(verrs),
		)
		return nil
	}

	failed := 0
	for i, row := range t.Rows {
		line := i + 2

		if err := ctx.Err(); err != nil {
			report.addError(fmt.Sprintf("%s: Row %d: import stopped: %v", m.Name, line, err))
			log.Warn("import stopped", "member", m.Name, "row", line, "error", err)
			return err
		}

		report.Imported[def.Type]++

		rec, err := def.Build(row)
		if err == nil {
			err = res.write(ctx, rec)
		}
		if err != nil {
			failed++
			report.addWarning(fmt.Sprintf("%s: Row %d: write failed: %v", m.Name, line, err))
			log.Warn("row write failed", "member", m.Name, "row", line, "error", err)
		}
	}

	log.Info("member imported",
		"member", m.Name,
		"type", def.Type,
		"detected_by", rule,
		"rows", len(t.Rows),
		"failed", failed,
	)
	return nil
}

// ValidateImport runs unpack, decode, detection and validation without
// touching any store. Results follow archive enumeration order.
func ValidateImport(data []byte, filename string) ([]MemberValidation, error) {
	members, err := tabular.Unpack(filename, data)
	if err != nil {
		return nil, err
	}

	results := make([]MemberValidation, 0, len(members))
	for _, m := range members {
		results = append(results, validateMember(m))
	}
	return results, nil
}

func validateMember(m tabular.Member) MemberValidation {
	mv := MemberValidation{Filename: m.Name, Errors: []string{}}

	t, err := tabular.Decode(m.Name, m.Content)
	if err != nil {
		mv.DataType = DataTypeError
		mv.Errors = append(mv.Errors, err.Error())
		return mv
	}

	def, _, ok := classify(t)
	if !ok {
		mv.DataType = DataTypeUnknown
		mv.Errors = append(mv.Errors, undeterminedTypeMessage)
		return mv
	}

	mv.DataType = string(def.Type)
	mv.RecordCount = len(t.Rows)
	for _, ve := range ValidateTable(def, t) {
		mv.Errors = append(mv.Errors, ve.Error())
	}
	mv.Valid = len(mv.Errors) == 0
	return mv
}
