// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// render is swappable in tests so guidance can be asserted without a TTY.
var render = func(md string) (string, error) {
	return glamour.Render(md, "auto")
}

// guidance maps failure kinds to short markdown help shown after the error
// messages. Only kinds where the fix is non-obvious get an entry.
var guidance = map[Kind]string{
	UnsupportedRemoteURL: `
## Remote URL format

Remotes must use one of:

~~~
git@github.com:owner/repo.git
https://github.com/owner/repo.git
~~~

The trailing ` + "`.git`" + ` is optional.`,

	RemoteFetchFailure: `
## Remote fetch failed

yard shells out to the ` + "`git`" + ` binary on your PATH. Check that:

- ` + "`git`" + ` is installed and on PATH
- the pinned commit exists on the remote
- your network and credentials (SSH keys, tokens) allow access

The captured git output above usually names the exact cause.`,

	HookFailure: `
## Build hook failed

Hooks run through an embedded POSIX shell. Re-run the hook command by hand
to reproduce, or remove it from ` + "`hooks.build`" + ` in yard.yaml.`,
}

// GuidedKinds returns the kinds that have guidance attached, sorted.
func GuidedKinds() []Kind {
	kinds := maps.Keys(guidance)
	slices.Sort(kinds)
	return kinds
}

// Guidance returns rendered markdown help for the outermost kind in the
// chain, if any exists. The second return is false when there is nothing
// actionable to show.
func Guidance(err error) (string, bool) {
	kind, ok := KindOf(err)
	if !ok {
		return "", false
	}
	md, ok := guidance[kind]
	if !ok {
		return "", false
	}
	out, rerr := render(md)
	if rerr != nil {
		// fall back to the raw markdown rather than hiding the help
		return md, true
	}
	return out, true
}
