package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/service"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbxml"
)

type app struct {
	out       io.Writer
	timeoutMs int
	analysis  *service.AnalysisService
	projects  *service.ProjectService
	exports   *service.ExportService
	solar     *service.SolarService
}

func (a *app) runAnalysis(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	projectID := fs.Int("project", 0, "GBS project id")
	parametric := fs.Bool("parametric", false, "execute parametric (mass) runs")
	timeoutMs := fs.Int("timeout-ms", a.timeoutMs, "per-upload timeout in milliseconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *projectID <= 0 || fs.NArg() == 0 {
		return errors.New("usage: run -project ID file.xml...")
	}

	res, err := a.analysis.RunEnergyAnalysis(ctx, domain.RunRequest{
		ProjectID:         *projectID,
		FilePaths:         fs.Args(),
		ExecuteParametric: *parametric,
		TimeoutMs:         *timeoutMs,
	})
	if err != nil {
		return err
	}
	return a.print(res)
}

func (a *app) runProject(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	title := fs.String("title", "", "project title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.projects.CreateProject(ctx, *title)
	if err != nil {
		return err
	}
	return a.print(map[string]int{"project_id": id})
}

func (a *app) runProjects(ctx context.Context, _ []string) error {
	projects, err := a.projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	return a.print(projects)
}

// runHistory prints the upload history of a project, or everything kept about one batch
func (a *app) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	projectID := fs.Int("project", 0, "GBS project id")
	batchID := fs.String("batch", "", "batch id returned by run")
	limit := fs.Int("limit", 0, "maximum entries, newest first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *batchID != "":
		batch, err := a.analysis.GetBatch(ctx, *batchID)
		if err != nil {
			return err
		}
		return a.print(batch)
	case *projectID > 0:
		entries, err := a.analysis.ListProjectHistory(ctx, *projectID, *limit)
		if err != nil {
			return err
		}
		return a.print(entries)
	default:
		return errors.New("usage: history -project ID [-limit N] | -batch ID")
	}
}

func (a *app) runDeleteRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-run", flag.ContinueOnError)
	runID := fs.Int("run", 0, "GBS run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID <= 0 {
		return errors.New("usage: delete-run -run ID")
	}

	if err := a.analysis.DeleteRun(ctx, *runID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "run %d deleted\n", *runID)
	return err
}

func (a *app) runExportMass(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export-mass", flag.ContinueOnError)
	req, shading := exportFlags(fs)
	mass := fs.Int64("mass", 0, "mass element id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids, err := parseIDs(*shading)
	if err != nil {
		return err
	}
	req.MassID = *mass
	req.ShadingIDs = ids

	res, err := a.exports.ExportMass(ctx, *req)
	if err != nil {
		return err
	}
	return a.print(res)
}

func (a *app) runExportZones(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export-zones", flag.ContinueOnError)
	req, shading := exportFlags(fs)
	zones := fs.String("zones", "", "comma separated zone element ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	zoneIDs, err := parseIDs(*zones)
	if err != nil {
		return err
	}
	shadingIDs, err := parseIDs(*shading)
	if err != nil {
		return err
	}
	req.ZoneIDs = zoneIDs
	req.ShadingIDs = shadingIDs

	res, err := a.exports.ExportZones(ctx, *req)
	if err != nil {
		return err
	}
	return a.print(res)
}

func (a *app) runSolar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solar", flag.ContinueOnError)
	az := fs.Float64("azimuth", 0, "azimuth in degrees, 0 to 360")
	alt := fs.Float64("altitude", 0, "altitude in degrees, 0 to 90")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := a.solar.SetAzimuthAltitude(ctx, domain.SolarRequest{Azimuth: *az, Altitude: *alt})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, out)
	return err
}

// runStamp prefixes the ProductName of already exported files
func runStamp(out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: stamp file.xml...")
	}
	for _, path := range args {
		n, err := gbxml.StampFile(path, gbxml.ProductNamePrefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d product name(s) stamped\n", path, n)
	}
	return nil
}

func exportFlags(fs *flag.FlagSet) (*domain.ExportRequest, *string) {
	req := &domain.ExportRequest{}
	fs.StringVar(&req.FolderPath, "folder", "", "destination folder")
	fs.StringVar(&req.FileName, "name", "", "file name without extension")
	fs.BoolVar(&req.Run, "connect", false, "confirm the export; nothing is written without it")
	shading := fs.String("shading", "", "comma separated shading mass ids")
	return req, shading
}

func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid element id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
