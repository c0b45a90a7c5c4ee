package model

// WarnKind enumerates the non-fatal condition taxonomy of spec.md §7. These
// are kinds, not error types: every condition surfaces through the warning
// sink, never by aborting the pipeline.
type WarnKind int

const (
	WarnParseFailure WarnKind = iota
	WarnIntrospectionFailure
	WarnUnresolvedName
	WarnMROFailure
	WarnDuplicateReExport
	WarnMalformedAllExports
	WarnAmbiguousAnnotation
	WarnUnknownDocstringField
	WarnExtensionSlotConflict
	WarnSkippedPath
)

func (k WarnKind) String() string {
	switch k {
	case WarnParseFailure:
		return "parse-failure"
	case WarnIntrospectionFailure:
		return "introspection-failure"
	case WarnUnresolvedName:
		return "unresolved-name"
	case WarnMROFailure:
		return "mro-failure"
	case WarnDuplicateReExport:
		return "duplicate-reexport"
	case WarnMalformedAllExports:
		return "malformed-all-exports"
	case WarnAmbiguousAnnotation:
		return "ambiguous-annotation"
	case WarnUnknownDocstringField:
		return "unknown-docstring-field"
	case WarnExtensionSlotConflict:
		return "extension-slot-conflict"
	case WarnSkippedPath:
		return "skipped-path"
	default:
		return "warning"
	}
}

// Warning is the concrete carrier for every non-fatal condition the engine
// can raise. The driver's warning sink receives these; none of them aborts
// the pipeline (spec.md §7).
type Warning struct {
	Kind     WarnKind
	Message  string
	Location Location
	Verbose  bool // surfaced only under verbose mode (e.g. WarnAmbiguousAnnotation)
}

func (w Warning) String() string {
	if w.Location.File != "" {
		return w.Kind.String() + ": " + w.Message + " (" + w.Location.File + ")"
	}
	return w.Kind.String() + ": " + w.Message
}

// Sink accumulates warnings raised throughout the pipeline. It is not
// goroutine-safe by design: the pipeline is single-threaded (spec.md §5).
type Sink struct {
	warnings []Warning
}

// NewSink creates an empty warning sink.
func NewSink() *Sink {
	return &Sink{}
}

// Warn appends a warning.
func (s *Sink) Warn(w Warning) {
	s.warnings = append(s.warnings, w)
}

// Warnings returns every warning raised so far, in emission order.
func (s *Sink) Warnings() []Warning {
	return s.warnings
}
