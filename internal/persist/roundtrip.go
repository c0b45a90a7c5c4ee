package persist

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oxhq/apidocs/internal/model"
)

// Save serializes every Documentable of sys under systemTag, replacing
// any rows previously saved under the same tag. sys is expected to be
// frozen (post-processing complete) — persistence caches a finished
// build, it does not participate in one.
func Save(db *gorm.DB, systemTag string, sys *model.System) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("system_tag = ?", systemTag).Delete(&DocumentableRow{}).Error; err != nil {
			return fmt.Errorf("persist: clearing prior rows: %w", err)
		}
		if err := tx.Where("system_tag = ?", systemTag).Delete(&SystemMeta{}).Error; err != nil {
			return fmt.Errorf("persist: clearing prior meta: %w", err)
		}

		for _, d := range sys.All() {
			row, err := toRow(systemTag, d)
			if err != nil {
				return fmt.Errorf("persist: encoding %s: %w", d.FQName, err)
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("persist: saving %s: %w", d.FQName, err)
			}
		}

		rootIDs, err := json.Marshal(sys.Roots())
		if err != nil {
			return err
		}
		rulesJSON, err := json.Marshal(sys.PrivacyRules())
		if err != nil {
			return err
		}
		meta := &SystemMeta{
			SystemTag:    systemTag,
			RootIDs:      datatypes.JSON(rootIDs),
			PrivacyRules: datatypes.JSON(rulesJSON),
		}
		return tx.Create(meta).Error
	})
}

// Load reconstructs a System from the rows previously saved under
// systemTag. The reconstructed System is frozen immediately: persisted
// state is always a finished build, never a partial one.
func Load(db *gorm.DB, systemTag string) (*model.System, error) {
	var rows []DocumentableRow
	if err := db.Where("system_tag = ?", systemTag).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("persist: loading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("persist: no System saved under tag %q", systemTag)
	}

	sys := model.NewSystem()
	var maxID model.ID
	for _, row := range rows {
		d, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("persist: decoding %s: %w", row.FQName, err)
		}
		if err := sys.Add(d); err != nil {
			return nil, fmt.Errorf("persist: re-adding %s: %w", row.FQName, err)
		}
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	for i := model.ID(0); i < maxID; i++ {
		sys.AllocID()
	}

	var meta SystemMeta
	if err := db.Where("system_tag = ?", systemTag).First(&meta).Error; err != nil {
		return nil, fmt.Errorf("persist: loading meta: %w", err)
	}
	var rootIDs []model.ID
	if err := json.Unmarshal(meta.RootIDs, &rootIDs); err != nil {
		return nil, fmt.Errorf("persist: decoding root ids: %w", err)
	}
	for _, id := range rootIDs {
		sys.AddRoot(id)
	}
	var rules []model.PrivacyRule
	if err := json.Unmarshal(meta.PrivacyRules, &rules); err != nil {
		return nil, fmt.Errorf("persist: decoding privacy rules: %w", err)
	}
	for _, r := range rules {
		sys.AddPrivacyRule(r.Pattern, r.Privacy)
	}

	sys.Freeze()
	return sys, nil
}

func toRow(systemTag string, d *model.Documentable) (*DocumentableRow, error) {
	extra, err := json.Marshal(d.ExtraInfo)
	if err != nil {
		return nil, err
	}
	children, err := json.Marshal(d.ChildrenIDs)
	if err != nil {
		return nil, err
	}
	mod, err := json.Marshal(d.Module)
	if err != nil {
		return nil, err
	}
	cls, err := json.Marshal(d.Class)
	if err != nil {
		return nil, err
	}
	fn, err := json.Marshal(d.Func)
	if err != nil {
		return nil, err
	}
	attr, err := json.Marshal(d.Attr)
	if err != nil {
		return nil, err
	}
	tvars, err := json.Marshal(d.TypeVarConstraints)
	if err != nil {
		return nil, err
	}

	row := &DocumentableRow{
		ID:                 int64(d.ID),
		SystemTag:          systemTag,
		Name:               d.Name,
		ParentID:           int64(d.ParentID),
		HasParent:          d.HasParent,
		Kind:               int(d.Kind),
		FQName:             d.FQName,
		LocFile:            d.Loc.File,
		LocLine:            d.Loc.Line,
		LocColumn:          d.Loc.Column,
		LocHasCol:          d.Loc.HasCol,
		DocFormat:          d.DocFormat,
		Privacy:            int(d.Privacy),
		IsIntrospected:     d.IsIntrospected,
		ExtraInfo:          datatypes.JSON(extra),
		ChildrenIDs:        datatypes.JSON(children),
		Module:             datatypes.JSON(mod),
		Class:              datatypes.JSON(cls),
		Func:               datatypes.JSON(fn),
		Attr:               datatypes.JSON(attr),
		AliasValueSource:   d.AliasValueSource,
		TypeVarConstraints: datatypes.JSON(tvars),
	}
	if d.Doc != nil {
		row.DocText = d.Doc.Text
		row.DocLineOffset = d.Doc.LineOffset
		row.HasDoc = true
	}
	return row, nil
}

func fromRow(row DocumentableRow) (*model.Documentable, error) {
	d := &model.Documentable{
		ID:               model.ID(row.ID),
		Name:             row.Name,
		ParentID:         model.ID(row.ParentID),
		HasParent:        row.HasParent,
		Kind:             model.Kind(row.Kind),
		FQName:           row.FQName,
		Loc:              model.Location{File: row.LocFile, Line: row.LocLine, Column: row.LocColumn, HasCol: row.LocHasCol},
		DocFormat:        row.DocFormat,
		Privacy:          model.Privacy(row.Privacy),
		IsIntrospected:   row.IsIntrospected,
		AliasValueSource: row.AliasValueSource,
	}
	if row.HasDoc {
		d.Doc = &model.Docstring{Text: row.DocText, LineOffset: row.DocLineOffset}
	}
	if err := unmarshalIfSet(row.ExtraInfo, &d.ExtraInfo); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.ChildrenIDs, &d.ChildrenIDs); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.Module, &d.Module); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.Class, &d.Class); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.Func, &d.Func); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.Attr, &d.Attr); err != nil {
		return nil, err
	}
	if err := unmarshalIfSet(row.TypeVarConstraints, &d.TypeVarConstraints); err != nil {
		return nil, err
	}
	return d, nil
}

func unmarshalIfSet(raw datatypes.JSON, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}
