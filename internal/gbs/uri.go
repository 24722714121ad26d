package gbs

// DefaultBaseURL is the Green Building Studio API root
const DefaultBaseURL = "https://gbs.autodesk.com/gbs/api/v1"

// Path templates relative to the base URL. %s is the response format.
const (
	createBaseRunPath      = "/run/create/base/%s"
	createProjectPath      = "/project/create/%s"
	projectListPath        = "/project/list/%s"
	defaultUtilityCostPath = "/utility/default/%s"
	massRunsPath           = "/project/massruns/%s"
)

const formatXML = "xml"
