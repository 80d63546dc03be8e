// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"shmod-cli/internal/host"
	"shmod-cli/internal/issue"
	"shmod-cli/internal/registry"
	"shmod-cli/internal/resolve"
	"shmod-cli/pkg/modref"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func TestIssueForError_MapsFailuresToCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"undefined function", fmt.Errorf("script.sh: %w", host.ErrUndefinedFunction), issue.UndefinedFunctionId},
		{"publish unbound", fmt.Errorf("unit.sh: %w", registry.ErrPublishUnbound), issue.PublishUnboundId},
		{"circular import", fmt.Errorf("importing a/b@v1.0.0: %w", resolve.ErrCircularImport), issue.CircularImportId},
		{"fetch failed", fmt.Errorf("resolving a/b@v1.0.0: %w", resolve.ErrFetchFailed), issue.ModuleFetchFailedId},
		{"extract failed", fmt.Errorf("resolving a/b@v1.0.0: %w", resolve.ErrExtractFailed), issue.ArchiveExtractFailedId},
		{"invalid ref", fmt.Errorf("import: %w", modref.ErrInvalidRef), issue.InvalidModuleRefId},
		{"invalid version", fmt.Errorf("import: %w", modref.ErrInvalidVersion), issue.InvalidModuleRefId},
		{"parse error", fmt.Errorf("parsing unit.sh: %w", syntax.ParseError{Text: "unexpected EOF"}), issue.ScriptParseErrorId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			iss, ok := issueForError(tt.err)
			if !ok {
				t.Fatalf("issueForError(%v) found no catalog entry", tt.err)
			}
			if iss == nil || iss.Id() != tt.want {
				t.Errorf("issueForError(%v) = %v, want id %d", tt.err, iss, tt.want)
			}
		})
	}
}

func TestIssueForError_IgnoresOrdinaryFailures(t *testing.T) {
	t.Parallel()

	// Non-zero exits and unclassified errors are not user mistakes worth a
	// help card.
	for _, err := range []error{nil, errors.New("disk on fire"), interp.ExitStatus(3)} {
		if iss, ok := issueForError(err); ok {
			t.Errorf("issueForError(%v) = %v, want no entry", err, iss.Id())
		}
	}
}

func TestReportIssue_PassesErrorThrough(t *testing.T) {
	t.Parallel()

	err := errors.New("unrecognized")
	if got := reportIssue(err); got != err {
		t.Errorf("reportIssue changed the error: got %v, want %v", got, err)
	}
	if got := reportIssue(nil); got != nil {
		t.Errorf("reportIssue(nil) = %v, want nil", got)
	}
}
