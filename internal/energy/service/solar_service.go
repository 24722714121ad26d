package service

import (
	"context"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

const (
	msgAzimuthRange  = "Az must be between 0 and 360"
	msgAltitudeRange = "Alt must be between 0 and 90"
	msgNoSunSettings = "Couldn't get the SunAndShadowSettings from the active view."

	// SolarSuccess is returned once both transactions committed
	SolarSuccess = "success!"
)

// SolarService sets the sun position of the active view
type SolarService struct {
	host host.Host
}

// NewSolarService creates a new SolarService
func NewSolarService(h host.Host) *SolarService {
	return &SolarService{host: h}
}

// SetAzimuthAltitude sets the sun to the given position in degrees and
// redraws the sun path.
func (s *SolarService) SetAzimuthAltitude(ctx context.Context, req domain.SolarRequest) (string, error) {
	if req.Azimuth < 0 || req.Azimuth > 360 {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgAzimuthRange)
	}
	if req.Altitude < 0 || req.Altitude > 90 {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgAltitudeRange)
	}

	doc, err := s.host.ActiveDocument()
	if err != nil {
		return "", fmt.Errorf("%w: %w", host.ErrNoActiveDocument, err)
	}
	view, err := doc.ActiveView()
	if err != nil {
		return "", fmt.Errorf("%w: %s %w", domain.ErrSunSettings, msgNoSunSettings, err)
	}
	sun, err := view.SunSettings()
	if err != nil {
		return "", fmt.Errorf("%w: %s %w", domain.ErrSunSettings, msgNoSunSettings, err)
	}

	tm := s.host.Transactions()
	err = host.InTransaction(tm, "Set sun position", func() error {
		sun.SetType(host.SunLighting)
		sun.SetRelativeToView(false)
		sun.SetAltitude(req.Altitude * math.Pi / 180)
		sun.SetAzimuth(req.Azimuth * math.Pi / 180)
		if err := sun.FitToModel(); err != nil {
			return fmt.Errorf("fit sun to model: %w", err)
		}
		return view.SetSunPathVisible(false)
	})
	if err != nil {
		return "", err
	}

	err = host.InTransaction(tm, "Show sun path", func() error {
		if err := view.SetSunPathVisible(true); err != nil {
			return err
		}
		return view.Refresh()
	})
	if err != nil {
		return "", err
	}

	logging.New(ctx).LogInfof("set_azimuth_altitude", "azimuth=%.2f altitude=%.2f", req.Azimuth, req.Altitude)
	return SolarSuccess, nil
}
