// Package inventory loads and queries external name->URL mappings (the
// "intersphinx" style inventory of spec.md §2/§4.3/§6), and formats this
// project's own inventory in the same bit-compatible wire format.
package inventory

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Entry is one row of an inventory: a fully-qualified name, the project
// that defines it, and the URL it resolves to.
type Entry struct {
	Name        string
	Role        string // e.g. "class", "function" (the domain is kept in Domain)
	Domain      string // e.g. "py"
	Project     string
	Version     string
	URL         string
	DisplayName string // "-" when identical to Name
}

// Inventory is one loaded external project's entries, indexed for
// longest-prefix-wins lookup (spec.md §4.3 step 3: "preferring longest
// prefix").
type Inventory struct {
	Name    string // the driver-assigned inventory_name
	Project string
	Version string
	BaseURL string
	byName  map[string]Entry
}

// New creates an empty named inventory (used for this project's own
// self-inventory before it is populated from the System registry).
func New(name, project, version, baseURL string) *Inventory {
	return &Inventory{
		Name:    name,
		Project: project,
		Version: version,
		BaseURL: baseURL,
		byName:  make(map[string]Entry),
	}
}

// Add records one entry.
func (inv *Inventory) Add(e Entry) {
	if inv.byName == nil {
		inv.byName = make(map[string]Entry)
	}
	inv.byName[e.Name] = e
}

// Lookup resolves a (possibly qualified) name, preferring the longest
// matching dotted prefix, per spec.md §4.3 step 3.
func (inv *Inventory) Lookup(name string) (Entry, bool) {
	if e, ok := inv.byName[name]; ok {
		return e, true
	}
	segments := strings.Split(name, ".")
	for n := len(segments) - 1; n > 0; n-- {
		prefix := strings.Join(segments[:n], ".")
		if e, ok := inv.byName[prefix]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Set is the collection of every loaded external inventory plus this
// project's own inventory, queried in registration order.
type Set struct {
	inventories []*Inventory
}

// NewSet creates an empty inventory set.
func NewSet() *Set {
	return &Set{}
}

// Register adds a loaded inventory to the set.
func (s *Set) Register(inv *Inventory) {
	s.inventories = append(s.inventories, inv)
}

// Loaded returns the names of every registered inventory, in registration
// order (spec.md §3.5: "the set of loaded external inventories").
func (s *Set) Loaded() []string {
	names := make([]string, 0, len(s.inventories))
	for _, inv := range s.inventories {
		names = append(names, inv.Name)
	}
	return names
}

// Resolve searches every registered inventory in order and returns the
// first hit, tagged with its owning inventory name.
func (s *Set) Resolve(name string) (invName, url string, ok bool) {
	for _, inv := range s.inventories {
		if e, found := inv.Lookup(name); found {
			return inv.Name, joinURL(inv.BaseURL, e.URL), true
		}
	}
	return "", "", false
}

func joinURL(base, rel string) string {
	if base == "" {
		return rel
	}
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}

// The wire format's plain-text preamble is four lines (spec.md §6): the
// format version line, the project line, the version line, and a marker
// saying the remainder is zlib-compressed.
const header1Prefix = "# Sphinx inventory version 2"
const header2 = "# Project: %s\n"
const header3 = "# Version: %s\n"
const header4 = "# The remainder of this file is compressed using zlib.\n"

// Decode parses the header-plus-zlib-compressed-payload wire format of
// spec.md §6 ("compatible with an existing de-facto standard"). Lines in
// the decompressed payload are `name domain:role 1 url display-name` (the
// trailing "1" is a search-priority field this engine ignores on read and
// emits as "1" on write).
func Decode(r io.Reader) (*Inventory, error) {
	br := bufio.NewReader(r)

	line1, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading inventory header: %w", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(line1), "# Sphinx inventory version") {
		return nil, fmt.Errorf("not an inventory file: unexpected header %q", line1)
	}

	project := ""
	version := ""
	for i := 0; i < 2; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading inventory metadata: %w", err)
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "# Project:"):
			project = strings.TrimSpace(strings.TrimPrefix(line, "# Project:"))
		case strings.HasPrefix(line, "# Version:"):
			version = strings.TrimSpace(strings.TrimPrefix(line, "# Version:"))
		}
	}
	// Skip the "compressed using zlib" marker line.
	if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading inventory marker line: %w", err)
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("opening zlib payload: %w", err)
	}
	defer zr.Close()

	inv := New("", project, version, "")
	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			continue
		}
		entry.Project = project
		entry.Version = version
		inv.Add(entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading inventory payload: %w", err)
	}
	return inv, nil
}

// parseLine parses one decompressed payload line:
// "name domain:role priority url display-name"
func parseLine(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Entry{}, false
	}
	name := fields[0]
	domainRole := fields[1]
	parts := strings.SplitN(domainRole, ":", 2)
	domain, role := "", domainRole
	if len(parts) == 2 {
		domain, role = parts[0], parts[1]
	}
	url := fields[3]
	display := "-"
	if len(fields) > 4 {
		display = strings.Join(fields[4:], " ")
	}
	return Entry{
		Name:        name,
		Domain:      domain,
		Role:        role,
		URL:         url,
		DisplayName: display,
	}, true
}

// Encode writes inv in the bit-compatible wire format: the plain-text
// header followed by a zlib-compressed payload of sorted entries. Sorting
// by name is required for the deterministic-output property of spec.md §8.
func Encode(w io.Writer, inv *Inventory) error {
	if _, err := io.WriteString(w, header1Prefix+"\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, header2, inv.Project); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, header3, inv.Version); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header4); err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)

	names := make([]string, 0, len(inv.byName))
	for name := range inv.byName {
		names = append(names, name)
	}
	sort.Strings(names)
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
		if _, err := fmt.Fprintf(zw, "%s %s 1 %s %s\n", e.Name, domainRole, e.URL, display); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// FormatEntryCount renders a human count, used by CLI summaries.
func FormatEntryCount(inv *Inventory) string {
	return strconv.Itoa(len(inv.byName))
}
