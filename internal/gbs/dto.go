package gbs

import "encoding/xml"

// NewRunItem is the body of a create-base-run request
type NewRunItem struct {
	XMLName   xml.Name `xml:"NewRunItem"`
	Title     string   `xml:"Title"`
	ProjectID int      `xml:"ProjectId"`
	// ZipData is the gbXML file zipped and base64 encoded
	ZipData string `xml:"ZipData"`
	IsDemo  bool   `xml:"IsDemo"`
}

// NewProjectItem is the body of a create-project request
type NewProjectItem struct {
	XMLName        xml.Name `xml:"NewProjectItem"`
	Title          string   `xml:"Title"`
	Demo           bool     `xml:"Demo"`
	BuildingTypeID int      `xml:"BuildingTypeId"`
	ScheduleID     int      `xml:"ScheduleId"`
	Latitude       float64  `xml:"Latitude"`
	Longitude      float64  `xml:"Longitude"`
	ElecCost       float64  `xml:"ElecCost"`
	FuelCost       float64  `xml:"FuelCost"`
	CultureInfo    string   `xml:"CultureInfo"`
}

// DefaultUtilityItem holds default electricity and fuel costs for a location
type DefaultUtilityItem struct {
	XMLName  xml.Name `xml:"DefaultUtilityItem"`
	ElecCost float64  `xml:"ElecCost"`
	FuelCost float64  `xml:"FuelCost"`
}

// Project mirrors a GBS project resource
type Project struct {
	ID             int    `xml:"Id" json:"id"`
	Title          string `xml:"Title" json:"title"`
	BuildingTypeID int    `xml:"BuildingTypeId,omitempty" json:"building_type_id,omitempty"`
	DateAdded      string `xml:"DateAdded,omitempty" json:"date_added,omitempty"`
}

// ProjectList is the project list response
type ProjectList struct {
	XMLName  xml.Name  `xml:"ArrayOfProject"`
	Projects []Project `xml:"Project"`
}

// MassRunItem toggles parametric (mass) runs for a project
type MassRunItem struct {
	XMLName         xml.Name `xml:"MassRunItem"`
	ProjectID       int      `xml:"ProjectId"`
	ExecuteMassRuns bool     `xml:"ExecuteMassRuns"`
}

// idResponse matches the serialized integer GBS returns from create calls,
// e.g. <int xmlns="...">42</int>. Any root element name is accepted.
type idResponse struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}
