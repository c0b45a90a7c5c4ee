package model

import "fmt"

// CheckInvariants walks every registered Documentable and verifies the
// structural invariants of spec.md §3.6: every child's ParentID points
// back to a parent whose ChildrenIDs contains it, every FQName is unique
// and consistent with parent.FQName+"."+Name, and a Documentable's
// Kind-specific payload pointer matches its Kind. Duplicate entries in a
// ChildrenIDs list are not reported. It is a diagnostic used by tests,
// not a hot-path check.
func (s *System) CheckInvariants() []error {
	var errs []error

	seenQName := make(map[string]ID)
	for _, d := range s.byID {
		if other, ok := seenQName[d.FQName]; ok && other != d.ID {
			errs = append(errs, fmt.Errorf("duplicate FQName %q on ids %d and %d", d.FQName, other, d.ID))
		}
		seenQName[d.FQName] = d.ID

		if d.HasParent {
			parent := s.byID[d.ParentID]
			if parent == nil {
				errs = append(errs, fmt.Errorf("documentable %d (%s) has dangling ParentID %d", d.ID, d.FQName, d.ParentID))
				continue
			}
			if !containsID(parent.ChildrenIDs, d.ID) {
				errs = append(errs, fmt.Errorf("documentable %d (%s) missing from parent %d's ChildrenIDs", d.ID, d.FQName, parent.ID))
			}
			expected := ChildQName(parent.FQName, d.Name)
			if d.FQName != expected {
				errs = append(errs, fmt.Errorf("documentable %d has FQName %q, expected %q from parent %q + name %q", d.ID, d.FQName, expected, parent.FQName, d.Name))
			}
		}

		for _, cid := range d.ChildrenIDs {
			child := s.byID[cid]
			if child == nil {
				errs = append(errs, fmt.Errorf("documentable %d (%s) references dangling child id %d", d.ID, d.FQName, cid))
				continue
			}
			if !child.HasParent || child.ParentID != d.ID {
				errs = append(errs, fmt.Errorf("documentable %d (%s) lists %d as child but child's ParentID is %d", d.ID, d.FQName, cid, child.ParentID))
			}
		}

		errs = append(errs, checkPayloadKind(d)...)
	}

	return errs
}

func checkPayloadKind(d *Documentable) []error {
	var errs []error
	switch d.Kind {
	case KindPackage, KindModule:
		if d.Module == nil {
			errs = append(errs, fmt.Errorf("documentable %d (%s) has kind %s but nil Module payload", d.ID, d.FQName, d.Kind))
		}
	case KindClass, KindException:
		if d.Class == nil {
			errs = append(errs, fmt.Errorf("documentable %d (%s) has kind %s but nil Class payload", d.ID, d.FQName, d.Kind))
		}
	case KindFunction, KindMethod, KindClassMethod, KindStaticMethod:
		if d.Func == nil {
			errs = append(errs, fmt.Errorf("documentable %d (%s) has kind %s but nil Func payload", d.ID, d.FQName, d.Kind))
		}
	case KindAttribute, KindProperty:
		// A Property is a Function reclassified into a Property Attribute
		// (spec.md §4.7): it carries Attr, not Func.
		if d.Attr == nil {
			errs = append(errs, fmt.Errorf("documentable %d (%s) has kind %s but nil Attr payload", d.ID, d.FQName, d.Kind))
		}
	}
	return errs
}

func containsID(ids []ID, target ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
