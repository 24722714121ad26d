// Package hosttest provides an in-memory host for tests.
package hosttest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
)

// ExportTemplate is written by the fake export. %s is the product name.
const ExportTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<gbXML xmlns="http://www.gbxml.org/schema" version="0.37">
  <Campus id="cmps-1"/>
  <DocumentHistory>
    <ProgramInfo id="pi-1">
      <ProductName>%s</ProductName>
    </ProgramInfo>
  </DocumentHistory>
</gbXML>
`

// Export is one recorded export call
type Export struct {
	Folder  string
	Name    string
	Options host.ExportOptions
}

// Sun is a recorded set of sun settings
type Sun struct {
	Type           host.SunAndShadowType
	RelativeToView bool
	Altitude       float64
	Azimuth        float64
	Fitted         bool
}

func (s *Sun) SetType(t host.SunAndShadowType) { s.Type = t }
func (s *Sun) SetRelativeToView(r bool)        { s.RelativeToView = r }
func (s *Sun) SetAltitude(rad float64)         { s.Altitude = rad }
func (s *Sun) SetAzimuth(rad float64)          { s.Azimuth = rad }
func (s *Sun) FitToModel() error {
	s.Fitted = true
	return nil
}

// View is a fake view
type View struct {
	Sun            *Sun
	SunErr         error
	SunPathHistory []bool
	Refreshes      int
}

func (v *View) SunSettings() (host.SunSettings, error) {
	if v.SunErr != nil {
		return nil, v.SunErr
	}
	if v.Sun == nil {
		return nil, fmt.Errorf("view has no sun settings")
	}
	return v.Sun, nil
}

func (v *View) SetSunPathVisible(visible bool) error {
	v.SunPathHistory = append(v.SunPathHistory, visible)
	return nil
}

func (v *View) Refresh() error {
	v.Refreshes++
	return nil
}

// Document is a fake host document. Zero values behave as an empty document.
type Document struct {
	Site     host.SiteLocation
	Settings host.EnergySettings

	// MassModels maps a mass to its analytical model; missing masses have none
	MassModels map[host.ElementID]host.ElementID
	Zones      map[host.ElementID][]host.ElementID
	Levels     map[host.ElementID][]host.ElementID

	ActivateErr   error
	Activations   int
	ExportErr     error
	SkipExport    bool
	ProductName   string
	Exports       []Export
	View          *View
	ViewErr       error
	SiteReads     int
	SettingsReads int
}

func (d *Document) SiteLocation() (host.SiteLocation, error) {
	d.SiteReads++
	return d.Site, nil
}

func (d *Document) EnergySettings() (host.EnergySettings, error) {
	d.SettingsReads++
	return d.Settings, nil
}

func (d *Document) ActivateEnergyModel() error {
	d.Activations++
	return d.ActivateErr
}

func (d *Document) MassEnergyModel(mass host.ElementID) (host.ElementID, error) {
	if id, ok := d.MassModels[mass]; ok {
		return id, nil
	}
	return host.InvalidElementID, nil
}

func (d *Document) MassZoneIDs(model host.ElementID) ([]host.ElementID, error) {
	return d.Zones[model], nil
}

func (d *Document) MassLevelIDs(mass host.ElementID) ([]host.ElementID, error) {
	return d.Levels[mass], nil
}

func (d *Document) ExportGBXML(folder, name string, opts host.ExportOptions) error {
	d.Exports = append(d.Exports, Export{Folder: folder, Name: name, Options: opts})
	if d.ExportErr != nil {
		return d.ExportErr
	}
	if d.SkipExport {
		return nil
	}
	product := d.ProductName
	if product == "" {
		product = "Fake Host 2024"
	}
	content := fmt.Sprintf(ExportTemplate, product)
	return os.WriteFile(filepath.Join(folder, name+".xml"), []byte(content), 0o644)
}

func (d *Document) ActiveView() (host.View, error) {
	if d.ViewErr != nil {
		return nil, d.ViewErr
	}
	if d.View == nil {
		return nil, fmt.Errorf("no active view")
	}
	return d.View, nil
}

// Transactions records transaction usage
type Transactions struct {
	Begun      []string
	Committed  []string
	RolledBack []string
	BeginErr   error
}

// Open returns how many transactions are still open
func (t *Transactions) Open() int {
	return len(t.Begun) - len(t.Committed) - len(t.RolledBack)
}

func (t *Transactions) Begin(name string) (host.Transaction, error) {
	if t.BeginErr != nil {
		return nil, t.BeginErr
	}
	t.Begun = append(t.Begun, name)
	return &tx{name: name, parent: t}, nil
}

type tx struct {
	name   string
	parent *Transactions
	closed bool
}

func (x *tx) Commit() error {
	if x.closed {
		return fmt.Errorf("transaction %q already closed", x.name)
	}
	x.closed = true
	x.parent.Committed = append(x.parent.Committed, x.name)
	return nil
}

func (x *tx) RollBack() error {
	if x.closed {
		return fmt.Errorf("transaction %q already closed", x.name)
	}
	x.closed = true
	x.parent.RolledBack = append(x.parent.RolledBack, x.name)
	return nil
}

// Host bundles a fake document and transaction recorder
type Host struct {
	Doc    *Document
	DocErr error
	Tx     *Transactions
}

// New returns a host with an empty document
func New() *Host {
	return &Host{Doc: &Document{}, Tx: &Transactions{}}
}

func (h *Host) ActiveDocument() (host.Document, error) {
	if h.DocErr != nil {
		return nil, h.DocErr
	}
	return h.Doc, nil
}

func (h *Host) Transactions() host.TransactionManager { return h.Tx }
