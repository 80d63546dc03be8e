// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	InvalidModuleRefId Id = iota + 1
	ModuleFetchFailedId
	ArchiveExtractFailedId
	CircularImportId
	UndefinedFunctionId
	PublishUnboundId
	ScriptParseErrorId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // optional documentation links
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	invalidModuleRefIssue = &Issue{
		id: InvalidModuleRefId,
		mdMsg: `
# Invalid module reference!

Module references follow the form ` + "`owner/name@vMAJOR.MINOR.PATCH`" + `.

## Common mistakes:
- Missing the leading "v" in the version: use ` + "`@v1.2.0`" + `, not ` + "`@1.2.0`" + `
- Leading zeros in version numbers: ` + "`v1.02.0`" + ` is rejected
- Missing the owner segment: ` + "`strings@v1.0.0`" + ` needs an owner, like ` + "`acme/strings@v1.0.0`" + `

## Examples of valid references:
~~~
import acme/strings@v1.2.0
import my-org/date.utils@v0.3.1
~~~`,
	}

	moduleFetchFailedIssue = &Issue{
		id: ModuleFetchFailedId,
		mdMsg: `
# Module fetch failed!

The module archive could not be downloaded.

## Common causes:
- The release tag does not exist for that version
- Typo in the owner or module name
- No network access, or a proxy in the way

## Things you can try:
- Check the version tag exists:
~~~
$ shmod get acme/strings@v1.2.0
~~~
- List what is already cached:
~~~
$ shmod list
~~~
- Override the registry URL template in your config if modules live
  somewhere other than GitHub releases:
~~~cue
registry: {
  url_template: "https://git.example.com/{owner}/{name}/archive/{version}.tar.gz"
}
~~~`,
	}

	archiveExtractFailedIssue = &Issue{
		id: ArchiveExtractFailedId,
		mdMsg: `
# Module archive extraction failed!

The downloaded archive could not be unpacked into the module cache.

## Common causes:
- The URL returned something that is not a tar.gz archive
- The archive is empty or contains no files under a top-level directory
- An entry tries to escape the module directory

## Things you can try:
- Download the archive manually and inspect it
- Clear the module cache and retry:
~~~
$ shmod cache clean
~~~`,
	}

	circularImportIssue = &Issue{
		id: CircularImportId,
		mdMsg: `
# Circular module import!

A module's import chain reached itself again, which would recurse
forever.

## Example of a cycle:
~~~
a/base@v1.0.0  imports  b/mid@v1.0.0
b/mid@v1.0.0   imports  a/base@v1.0.0
~~~

## Things you can try:
- Move the shared functions into a third module both can import
- Remove the back-reference from the lower-level module`,
	}

	undefinedFunctionIssue = &Issue{
		id: UndefinedFunctionId,
		mdMsg: `
# Undefined function!

The name you called belongs to a function that was defined but never
published. Defining a function inside a module makes it private; only
` + "`publish`" + ` restores the name for callers.

## Things you can try:
- If you own the module, publish the function:
~~~
get() { echo "2020"; }
publish get
~~~
- Check the module's published names:
~~~
$ shmod exports acme/strings@v1.2.0
~~~`,
	}

	publishUnboundIssue = &Issue{
		id: PublishUnboundId,
		mdMsg: `
# Publish of an unknown name!

` + "`publish`" + ` only works for names defined earlier in the same module.

## Things you can try:
- Define the function before publishing it
- Check for typos between the definition and the publish line
- Remember that a ` + "`module`" + ` directive prefixes later definitions:
  after ` + "`module acme`" + `, the function ` + "`get`" + ` publishes as ` + "`acme.get`" + `
  and must be published with its short name ` + "`get`" + ``,
	}

	scriptParseErrorIssue = &Issue{
		id: ScriptParseErrorId,
		mdMsg: `
# Failed to parse script!

The source unit contains shell syntax the parser rejected.

## Things you can try:
- Check the error message above for the specific line and column
- Run the script through ` + "`bash -n`" + ` to double-check the syntax
- Remember that directives must be plain words:
~~~
import acme/strings@v1.2.0    # literal reference, no expansions
publish get put               # literal names
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the shmod configuration file.

## Configuration file locations:
- Linux: ~/.config/shmod/config.cue
- macOS: ~/Library/Application Support/shmod/config.cue
- Windows: %APPDATA%\shmod\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ shmod config init
~~~
- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
modules_path: "/home/user/.cache/shmod/modules"

registry: {
  url_template: "https://github.com/{owner}/{name}/archive/refs/tags/{version}.tar.gz"
}

ui: {
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		invalidModuleRefIssue.Id():     invalidModuleRefIssue,
		moduleFetchFailedIssue.Id():    moduleFetchFailedIssue,
		archiveExtractFailedIssue.Id(): archiveExtractFailedIssue,
		circularImportIssue.Id():       circularImportIssue,
		undefinedFunctionIssue.Id():    undefinedFunctionIssue,
		publishUnboundIssue.Id():       publishUnboundIssue,
		scriptParseErrorIssue.Id():     scriptParseErrorIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
