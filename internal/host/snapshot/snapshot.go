// Package snapshot is a host adapter backed by a YAML snapshot of a host
// document. It lets the CLI and API run without the host application; the
// snapshot is rewritten whenever a transaction commits.
package snapshot

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
)

// DefaultProductName is written into exported files when the snapshot names no product
const DefaultProductName = "Host Snapshot"

// State is the on-disk snapshot
type State struct {
	Site              Site     `yaml:"site"`
	Energy            Energy   `yaml:"energy"`
	EnergyModelActive bool     `yaml:"energy_model_active"`
	Masses            []Mass   `yaml:"masses"`
	View              ViewData `yaml:"view"`
	ProductName       string   `yaml:"product_name,omitempty"`
}

// Site is stored in degrees; the host API reports radians
type Site struct {
	LatitudeDeg  float64 `yaml:"latitude_deg"`
	LongitudeDeg float64 `yaml:"longitude_deg"`
}

type Energy struct {
	BuildingType      string `yaml:"building_type"`
	OperatingSchedule string `yaml:"operating_schedule"`
}

// Mass is a mass instance. ModelID 0 means no analytical model.
type Mass struct {
	ID      int64   `yaml:"id"`
	ModelID int64   `yaml:"model_id,omitempty"`
	Zones   []int64 `yaml:"zones,omitempty"`
	Levels  []int64 `yaml:"levels,omitempty"`
}

type ViewData struct {
	Name           string  `yaml:"name"`
	Sun            SunData `yaml:"sun"`
	SunPathVisible bool    `yaml:"sun_path_visible"`
	Refreshes      int     `yaml:"refreshes"`
}

// SunData angles are radians
type SunData struct {
	Type           string  `yaml:"type"`
	RelativeToView bool    `yaml:"relative_to_view"`
	Altitude       float64 `yaml:"altitude"`
	Azimuth        float64 `yaml:"azimuth"`
	FittedToModel  bool    `yaml:"fitted_to_model"`
}

// Host is the snapshot adapter
type Host struct {
	mu    sync.Mutex
	path  string
	state State
	open  *transaction
}

// Open loads the snapshot at path
func Open(path string) (*Host, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", path, err)
	}
	var st State
	if err := yaml.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse snapshot %q: %w", path, err)
	}
	return &Host{path: path, state: st}, nil
}

// State returns a copy of the current in-memory state
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneState(h.state)
}

func (h *Host) ActiveDocument() (host.Document, error) {
	return &document{h: h}, nil
}

func (h *Host) Transactions() host.TransactionManager { return h }

// Begin opens a transaction. Only one may be open at a time.
func (h *Host) Begin(name string) (host.Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open != nil {
		return nil, fmt.Errorf("transaction %q is still open", h.open.name)
	}
	h.open = &transaction{h: h, name: name, saved: cloneState(h.state)}
	return h.open, nil
}

func (h *Host) save() error {
	b, err := yaml.Marshal(h.state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(h.path, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

type transaction struct {
	h     *Host
	name  string
	saved State
}

func (t *transaction) Commit() error {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	if t.h.open != t {
		return fmt.Errorf("transaction %q is not open", t.name)
	}
	t.h.open = nil
	return t.h.save()
}

func (t *transaction) RollBack() error {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	if t.h.open != t {
		return fmt.Errorf("transaction %q is not open", t.name)
	}
	t.h.open = nil
	t.h.state = t.saved
	return nil
}

type document struct {
	h *Host
}

func (d *document) SiteLocation() (host.SiteLocation, error) {
	st := d.h.State()
	return host.SiteLocation{
		Latitude:  st.Site.LatitudeDeg * math.Pi / 180,
		Longitude: st.Site.LongitudeDeg * math.Pi / 180,
	}, nil
}

func (d *document) EnergySettings() (host.EnergySettings, error) {
	st := d.h.State()
	return host.EnergySettings{
		BuildingType:      st.Energy.BuildingType,
		OperatingSchedule: st.Energy.OperatingSchedule,
	}, nil
}

func (d *document) ActivateEnergyModel() error {
	return d.mutate(func(st *State) error {
		st.EnergyModelActive = true
		return nil
	})
}

func (d *document) MassEnergyModel(mass host.ElementID) (host.ElementID, error) {
	st := d.h.State()
	if !st.EnergyModelActive {
		return host.InvalidElementID, nil
	}
	for _, m := range st.Masses {
		if m.ID == int64(mass) && m.ModelID != 0 && len(m.Levels) > 0 {
			return host.ElementID(m.ModelID), nil
		}
	}
	return host.InvalidElementID, nil
}

func (d *document) MassZoneIDs(model host.ElementID) ([]host.ElementID, error) {
	for _, m := range d.h.State().Masses {
		if m.ModelID == int64(model) {
			return toIDs(m.Zones), nil
		}
	}
	return nil, fmt.Errorf("analytical model %d not found", model)
}

func (d *document) MassLevelIDs(mass host.ElementID) ([]host.ElementID, error) {
	for _, m := range d.h.State().Masses {
		if m.ID == int64(mass) {
			return toIDs(m.Levels), nil
		}
	}
	return nil, fmt.Errorf("mass %d not found", mass)
}

func (d *document) ExportGBXML(folder, name string, opts host.ExportOptions) error {
	st := d.h.State()
	if !st.EnergyModelActive {
		return fmt.Errorf("energy model is not active")
	}
	product := st.ProductName
	if product == "" {
		product = DefaultProductName
	}

	out := exportDoc{
		Xmlns:   "http://www.gbxml.org/schema",
		Version: "0.37",
		Campus:  exportCampus{ID: "cmps-1"},
		History: exportHistory{ProgramInfo: exportProgramInfo{ID: "snapshot", ProductName: product}},
	}
	out.Campus.Location.Latitude = st.Site.LatitudeDeg
	out.Campus.Location.Longitude = st.Site.LongitudeDeg
	for _, z := range opts.ZoneIDs {
		out.Zones = append(out.Zones, exportZone{ID: fmt.Sprintf("zone-%d", z)})
	}
	for _, s := range opts.ShadingIDs {
		out.Campus.Shading = append(out.Campus.Shading, exportShading{ID: fmt.Sprintf("shade-%d", s)})
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gbxml: %w", err)
	}
	content := append([]byte(xml.Header), b...)
	return os.WriteFile(filepath.Join(folder, name+".xml"), content, 0o644)
}

func (d *document) ActiveView() (host.View, error) {
	return &view{d: d}, nil
}

// mutate applies fn to the state; it requires an open transaction like the host does
func (d *document) mutate(fn func(st *State) error) error {
	d.h.mu.Lock()
	defer d.h.mu.Unlock()
	if d.h.open == nil {
		return fmt.Errorf("modifying the document requires an open transaction")
	}
	return fn(&d.h.state)
}

type view struct {
	d *document
}

func (v *view) SunSettings() (host.SunSettings, error) {
	return &sun{d: v.d}, nil
}

func (v *view) SetSunPathVisible(visible bool) error {
	return v.d.mutate(func(st *State) error {
		st.View.SunPathVisible = visible
		return nil
	})
}

func (v *view) Refresh() error {
	return v.d.mutate(func(st *State) error {
		st.View.Refreshes++
		return nil
	})
}

// sun writes straight into the state; setters outside a transaction are dropped
// the same way the host ignores them, and FitToModel reports the error.
type sun struct {
	d *document
}

func (s *sun) set(fn func(sd *SunData)) {
	_ = s.d.mutate(func(st *State) error {
		fn(&st.View.Sun)
		return nil
	})
}

func (s *sun) SetType(t host.SunAndShadowType) { s.set(func(sd *SunData) { sd.Type = string(t) }) }
func (s *sun) SetRelativeToView(r bool)        { s.set(func(sd *SunData) { sd.RelativeToView = r }) }
func (s *sun) SetAltitude(rad float64)         { s.set(func(sd *SunData) { sd.Altitude = rad }) }
func (s *sun) SetAzimuth(rad float64)          { s.set(func(sd *SunData) { sd.Azimuth = rad }) }

func (s *sun) FitToModel() error {
	return s.d.mutate(func(st *State) error {
		st.View.Sun.FittedToModel = true
		return nil
	})
}

func toIDs(in []int64) []host.ElementID {
	out := make([]host.ElementID, len(in))
	for i, v := range in {
		out[i] = host.ElementID(v)
	}
	return out
}

func cloneState(st State) State {
	out := st
	out.Masses = make([]Mass, len(st.Masses))
	for i, m := range st.Masses {
		m.Zones = append([]int64(nil), m.Zones...)
		m.Levels = append([]int64(nil), m.Levels...)
		out.Masses[i] = m
	}
	return out
}

type exportDoc struct {
	XMLName xml.Name      `xml:"gbXML"`
	Xmlns   string        `xml:"xmlns,attr"`
	Version string        `xml:"version,attr"`
	Campus  exportCampus  `xml:"Campus"`
	Zones   []exportZone  `xml:"Zone"`
	History exportHistory `xml:"DocumentHistory"`
}

type exportCampus struct {
	ID       string `xml:"id,attr"`
	Location struct {
		Latitude  float64 `xml:"Latitude"`
		Longitude float64 `xml:"Longitude"`
	} `xml:"Location"`
	Shading []exportShading `xml:"Surface"`
}

type exportShading struct {
	ID string `xml:"id,attr"`
}

type exportZone struct {
	ID string `xml:"id,attr"`
}

type exportHistory struct {
	ProgramInfo exportProgramInfo `xml:"ProgramInfo"`
}

type exportProgramInfo struct {
	ID          string `xml:"id,attr"`
	ProductName string `xml:"ProductName"`
}
