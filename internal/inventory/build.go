package inventory

import (
	"sort"

	"github.com/oxhq/apidocs/internal/model"
)

// roleOf maps a Documentable's Kind to the "py:role" convention the wire
// format's domain:role field uses, matching what other Sphinx-family
// inventories emit for the equivalent Python construct.
func roleOf(k model.Kind) string {
	switch k {
	case model.KindPackage, model.KindModule:
		return "module"
	case model.KindClass:
		return "class"
	case model.KindException:
		return "exception"
	case model.KindFunction:
		return "function"
	case model.KindMethod, model.KindClassMethod, model.KindStaticMethod:
		return "method"
	case model.KindProperty, model.KindAttribute:
		return "attribute"
	case model.KindTypeAlias:
		return "data"
	case model.KindTypeVariable:
		return "data"
	default:
		return "obj"
	}
}

// BuildSystemInventory dumps every PUBLIC and PRIVATE Documentable of sys
// into a self-inventory named name, fulfilling spec.md §6's "dumped
// inventory of fully_qualified_name -> relative_url ... tagged by kind.
// HIDDEN entities are omitted." Each entry's URL is an in-page fragment
// anchor, the same "#"+FQName convention internal/linker uses for
// internally-resolved names. baseURL is stored on the Inventory, not
// joined into each entry's URL; Set.Resolve joins the two at lookup time.
func BuildSystemInventory(sys *model.System, name, project, version, baseURL string) *Inventory {
	inv := New(name, project, version, baseURL)
	for _, d := range sys.All() {
		if d.Privacy == model.HIDDEN {
			continue
		}
		inv.Add(Entry{
			Name:    d.FQName,
			Role:    roleOf(d.Kind),
			Domain:  "py",
			Project: project,
			Version: version,
			URL:     "#" + d.FQName,
		})
	}
	return inv
}

// FormatLines renders inv's entries as the same plain-text payload lines
// Encode would compress, sorted by name. It exists so a driver can diff
// two inventories with a text differ (github.com/pmezard/go-difflib)
// without decompressing the zlib payloads of their encoded files.
func FormatLines(inv *Inventory) []string {
	names := make([]string, 0, len(inv.byName))
	for name := range inv.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		e := inv.byName[name]
		display := e.DisplayName
		if display == "" {
			display = "-"
		}
		domainRole := e.Role
		if e.Domain != "" {
			domainRole = e.Domain + ":" + e.Role
		}
		lines = append(lines, e.Name+" "+domainRole+" 1 "+e.URL+" "+display+"\n")
	}
	return lines
}
