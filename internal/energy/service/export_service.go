package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbxml"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

const (
	noFileSelected      = "No file selected."
	msgNoFile           = "No file selected !"
	msgNoFolder         = "Folder doesn't exist. Input valid Directory Path!"
	msgNotConnected     = "Set 'Connect' to True!"
	msgNoFileName       = "File name is required"
	msgEnergyModel      = "Something went wrong when trying to enable the energy model."
	msgNoAnalyticModel  = "Could not get the MassEnergyAnalyticalModel from the mass - make sure the Mass has at least one Mass Floor."
	shadingFloorsFormat = "Item %d in MassShadingInstances has mass floors assigned. Remove the mass floors and try again."

	ReportExported     = "Success! The gbXML file was created"
	ReportExportFailed = "Failed to create gbXML file!"
)

// ExportService exports building masses from the host document to gbXML
type ExportService struct {
	host host.Host
}

// NewExportService creates a new ExportService
func NewExportService(h host.Host) *ExportService {
	return &ExportService{host: h}
}

// ExportMass exports the zones of one mass's analytical model
func (s *ExportService) ExportMass(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	return s.export(ctx, req, func(doc host.Document) ([]host.ElementID, error) {
		model, err := doc.MassEnergyModel(host.ElementID(req.MassID))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %w", domain.ErrEnergyModel, msgNoAnalyticModel, err)
		}
		if model == host.InvalidElementID {
			return nil, fmt.Errorf("%w: %s", domain.ErrEnergyModel, msgNoAnalyticModel)
		}
		zones, err := doc.MassZoneIDs(model)
		if err != nil {
			return nil, fmt.Errorf("read mass zones: %w", err)
		}
		return zones, nil
	})
}

// ExportZones exports the given zones
func (s *ExportService) ExportZones(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	return s.export(ctx, req, func(host.Document) ([]host.ElementID, error) {
		return toElementIDs(req.ZoneIDs), nil
	})
}

func (s *ExportService) export(ctx context.Context, req domain.ExportRequest, zonesOf func(host.Document) ([]host.ElementID, error)) (*domain.ExportResult, error) {
	logger := logging.New(ctx)

	if err := validateExport(req); err != nil {
		return nil, err
	}

	doc, err := s.host.ActiveDocument()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", host.ErrNoActiveDocument, err)
	}

	shading := toElementIDs(req.ShadingIDs)
	for i, id := range shading {
		levels, err := doc.MassLevelIDs(id)
		if err != nil {
			return nil, fmt.Errorf("read mass floors of shading item %d: %w", i, err)
		}
		if len(levels) > 0 {
			return nil, fmt.Errorf("%w: "+shadingFloorsFormat, domain.ErrShadingHasFloors, i)
		}
	}

	tm := s.host.Transactions()
	err = host.InTransaction(tm, "Enable energy model", func() error {
		if err := doc.ActivateEnergyModel(); err != nil {
			return fmt.Errorf("%w: %s %w", domain.ErrEnergyModel, msgEnergyModel, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zones, err := zonesOf(doc)
	if err != nil {
		return nil, err
	}

	opts := host.ExportOptions{ZoneIDs: zones}
	if len(shading) > 0 {
		opts.ShadingIDs = shading
	}
	err = host.InTransaction(tm, "Export gbXML", func() error {
		return doc.ExportGBXML(req.FolderPath, req.FileName, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("export gbxml: %w", err)
	}

	path := filepath.Join(req.FolderPath, req.FileName+".xml")
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat export: %w", err)
		}
		logger.LogWarnf("export_gbxml", "no file at %s after export", path)
		return &domain.ExportResult{Report: ReportExportFailed}, nil
	}

	stamped, err := gbxml.StampFile(path, gbxml.ProductNamePrefix)
	if err != nil {
		return nil, fmt.Errorf("stamp product name: %w", err)
	}
	logger.LogInfof("export_gbxml", "path=%s zones=%d shading=%d stamped=%d", path, len(zones), len(shading), stamped)

	return &domain.ExportResult{Report: ReportExported, Path: path}, nil
}

func validateExport(req domain.ExportRequest) error {
	if req.FolderPath == "" || req.FolderPath == noFileSelected {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgNoFile)
	}
	info, err := os.Stat(req.FolderPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgNoFolder)
	}
	if !req.Run {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgNotConnected)
	}
	if req.FileName == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgNoFileName)
	}
	return nil
}

func toElementIDs(ids []int64) []host.ElementID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]host.ElementID, len(ids))
	for i, id := range ids {
		out[i] = host.ElementID(id)
	}
	return out
}
