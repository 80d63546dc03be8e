// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"shmod-cli/internal/host"
	"shmod-cli/internal/issue"
	"shmod-cli/internal/registry"
	"shmod-cli/internal/resolve"
	"shmod-cli/pkg/modref"

	"mvdan.cc/sh/v3/syntax"
)

// issueForError maps a failure to its catalog entry. Checks run from the
// most specific sentinel outward; exit statuses and unrecognized errors
// carry no card.
func issueForError(err error) (*issue.Issue, bool) {
	switch {
	case err == nil:
		return nil, false
	case errors.Is(err, host.ErrUndefinedFunction):
		return issue.Get(issue.UndefinedFunctionId), true
	case errors.Is(err, registry.ErrPublishUnbound):
		return issue.Get(issue.PublishUnboundId), true
	case errors.Is(err, resolve.ErrCircularImport):
		return issue.Get(issue.CircularImportId), true
	case errors.Is(err, resolve.ErrFetchFailed):
		return issue.Get(issue.ModuleFetchFailedId), true
	case errors.Is(err, resolve.ErrExtractFailed):
		return issue.Get(issue.ArchiveExtractFailedId), true
	case errors.Is(err, modref.ErrInvalidRef), errors.Is(err, modref.ErrInvalidVersion):
		return issue.Get(issue.InvalidModuleRefId), true
	}

	var parseErr syntax.ParseError
	if errors.As(err, &parseErr) {
		return issue.Get(issue.ScriptParseErrorId), true
	}
	return nil, false
}

// reportIssue renders the catalog card for a recognized failure to stderr
// and passes the error through unchanged, so handlers can
// `return reportIssue(err)`.
func reportIssue(err error) error {
	if iss, ok := issueForError(err); ok {
		if rendered, renderErr := iss.Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}
	return err
}
