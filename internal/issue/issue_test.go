// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet_AllIdsCataloged(t *testing.T) {
	ids := []Id{
		InvalidModuleRefId,
		ModuleFetchFailedId,
		ArchiveExtractFailedId,
		CircularImportId,
		UndefinedFunctionId,
		PublishUnboundId,
		ScriptParseErrorId,
		ConfigLoadFailedId,
	}
	for _, id := range ids {
		i := Get(id)
		if i == nil {
			t.Errorf("no issue cataloged for id %d", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("issue for id %d reports id %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", id)
		}
	}
}

func TestValues_MatchesCatalogSize(t *testing.T) {
	if got, want := len(Values()), len(issues); got != want {
		t.Errorf("Values() returned %d issues, catalog has %d", got, want)
	}
}

func TestRender_IncludesLinks(t *testing.T) {
	// Stub the renderer so the test asserts on composition, not on
	// glamour's terminal styling.
	orig := render
	render = func(in, _ string) (string, error) { return in, nil }
	defer func() { render = orig }()

	i := &Issue{
		id:       ModuleFetchFailedId,
		mdMsg:    "# fetch failed",
		docLinks: []HttpLink{"https://example.com/docs"},
	}
	out, err := i.Render("auto")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "fetch failed") || !strings.Contains(out, "https://example.com/docs") {
		t.Errorf("rendered output missing content: %q", out)
	}
}

func TestLinkAccessorsCopy(t *testing.T) {
	i := &Issue{
		id:       CircularImportId,
		docLinks: []HttpLink{"https://example.com/a"},
		extLinks: []HttpLink{"https://example.com/b"},
	}
	docs := i.DocLinks()
	docs[0] = "mutated"
	if i.docLinks[0] != "https://example.com/a" {
		t.Error("DocLinks returned the internal slice")
	}
	exts := i.ExtLinks()
	exts[0] = "mutated"
	if i.extLinks[0] != "https://example.com/b" {
		t.Error("ExtLinks returned the internal slice")
	}
}
