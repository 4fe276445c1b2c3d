package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/zero-day-ai/advreg/advancement"
)

// Datapack directory names. Versions before 1.21 use the plural form.
var datapackDirs = []string{"advancement", "advancements"}

// datapackFile is the on-disk shape of one advancement in a datapack.
// Criteria and rewards are not read.
type datapackFile struct {
	Parent  string           `json:"parent"`
	Display *datapackDisplay `json:"display"`

	SendsTelemetryEvent bool `json:"sends_telemetry_event"`
}

type datapackDisplay struct {
	Icon           datapackIcon     `json:"icon"`
	Title          advancement.Text `json:"title"`
	Description    advancement.Text `json:"description"`
	Frame          string           `json:"frame"`
	Background     string           `json:"background"`
	ShowToast      *bool            `json:"show_toast"`
	AnnounceToChat *bool            `json:"announce_to_chat"`
	Hidden         bool             `json:"hidden"`
}

// datapackIcon accepts both {"id": ...} and the older {"item": ...}.
type datapackIcon struct {
	ID   string `json:"id"`
	Item string `json:"item"`
}

func (i datapackIcon) name() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Item
}

type datapackSource struct {
	fsys             fs.FS
	defaultNamespace string
}

// Datapack returns a Source reading data/<namespace>/advancement/**.json from fsys.
//
// A file data/foo/advancement/bar/baz.json becomes id "foo:bar/baz". Ids and
// parents in defaultNamespace are stored bare, matching the embedded data set.
func Datapack(fsys fs.FS, defaultNamespace string) Source {
	return &datapackSource{fsys: fsys, defaultNamespace: defaultNamespace}
}

func (d *datapackSource) Name() string { return "datapack" }

func (d *datapackSource) Load(ctx context.Context) ([]advancement.Record, error) {
	namespaces, err := fs.ReadDir(d.fsys, "data")
	if err != nil {
		return nil, fmt.Errorf("datapack: %w", err)
	}

	var records []advancement.Record
	for _, ns := range namespaces {
		if !ns.IsDir() {
			continue
		}
		for _, dir := range datapackDirs {
			root := path.Join("data", ns.Name(), dir)
			if _, err := fs.Stat(d.fsys, root); err != nil {
				continue
			}
			err := fs.WalkDir(d.fsys, root, func(p string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if entry.IsDir() || path.Ext(p) != ".json" {
					return nil
				}
				rec, err := d.readRecord(ns.Name(), root, p)
				if err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("datapack: %w", err)
			}
		}
	}
	return records, nil
}

func (d *datapackSource) readRecord(namespace, root, p string) (advancement.Record, error) {
	data, err := fs.ReadFile(d.fsys, p)
	if err != nil {
		return advancement.Record{}, err
	}
	var file datapackFile
	if err := json.Unmarshal(data, &file); err != nil {
		return advancement.Record{}, fmt.Errorf("%s: %w", p, err)
	}

	rel := strings.TrimSuffix(strings.TrimPrefix(p, root+"/"), ".json")
	rec := advancement.Record{
		ID:             advancement.CanonicalID(namespace, rel, d.defaultNamespace),
		SendsTelemetry: file.SendsTelemetryEvent,
	}
	if file.Parent != "" {
		ns, parentPath := advancement.SplitID(file.Parent)
		if ns == "" {
			ns = "minecraft"
		}
		rec.Parent = advancement.CanonicalID(ns, parentPath, d.defaultNamespace)
	}
	if file.Display != nil {
		rec.Display = file.Display.record()
	}
	return rec, nil
}

func (d *datapackDisplay) record() *advancement.Display {
	return &advancement.Display{
		Title:          d.Title,
		Description:    d.Description,
		Icon:           d.Icon.name(),
		Frame:          advancement.Frame(d.Frame),
		Background:     d.Background,
		ShowToast:      d.ShowToast == nil || *d.ShowToast,
		AnnounceToChat: d.AnnounceToChat == nil || *d.AnnounceToChat,
		Hidden:         d.Hidden,
	}
}
