// Package host describes the parts of the host CAD application this module
// uses. Adapters implement these interfaces; the services only see them.
package host

import "errors"

// ElementID identifies an element of the host document
type ElementID int64

// InvalidElementID is returned by lookups that found nothing
const InvalidElementID ElementID = -1

// SiteLocation is the project location in radians
type SiteLocation struct {
	Latitude  float64
	Longitude float64
}

// EnergySettings are the document's energy-analysis defaults, by enumeration name
type EnergySettings struct {
	BuildingType      string
	OperatingSchedule string
}

// ExportOptions selects what a gbXML export contains
type ExportOptions struct {
	ZoneIDs    []ElementID
	ShadingIDs []ElementID
}

// HasShading reports whether the export includes shading masses
func (o ExportOptions) HasShading() bool { return len(o.ShadingIDs) > 0 }

// SunAndShadowType is the sun mode of a view
type SunAndShadowType string

const (
	SunStill    SunAndShadowType = "still"
	SunLighting SunAndShadowType = "lighting"
)

// SunSettings are the sun-and-shadow settings of a view. Angles are radians.
type SunSettings interface {
	SetType(t SunAndShadowType)
	SetRelativeToView(relative bool)
	SetAltitude(rad float64)
	SetAzimuth(rad float64)
	FitToModel() error
}

// View is a host view
type View interface {
	SunSettings() (SunSettings, error)
	SetSunPathVisible(visible bool) error
	Refresh() error
}

// Document is the active host document
type Document interface {
	SiteLocation() (SiteLocation, error)
	EnergySettings() (EnergySettings, error)
	// ActivateEnergyModel enables the analytical energy model if it is not already
	ActivateEnergyModel() error
	// MassEnergyModel returns the analytical model of a mass, or InvalidElementID
	MassEnergyModel(mass ElementID) (ElementID, error)
	MassZoneIDs(model ElementID) ([]ElementID, error)
	// MassLevelIDs returns the mass floors assigned to a mass
	MassLevelIDs(mass ElementID) ([]ElementID, error)
	// ExportGBXML writes <folder>/<name>.xml
	ExportGBXML(folder, name string, opts ExportOptions) error
	ActiveView() (View, error)
}

// Transaction is an open host transaction
type Transaction interface {
	Commit() error
	RollBack() error
}

// TransactionManager opens transactions on the active document
type TransactionManager interface {
	Begin(name string) (Transaction, error)
}

// Host gives access to the active document and its transactions
type Host interface {
	ActiveDocument() (Document, error)
	Transactions() TransactionManager
}

var ErrNoActiveDocument = errors.New("no active document")
