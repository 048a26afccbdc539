// cmd/tools/motor-cli/commands.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"motor-picker/internal/catalog"
	"motor-picker/internal/catalog/pgstore"
	"motor-picker/internal/catalog/search"
	"motor-picker/internal/catalog/xlsx"
	"motor-picker/internal/common/config"
	"motor-picker/internal/common/database"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/matcher"
	"motor-picker/internal/models"
	"motor-picker/internal/physics"
	"motor-picker/internal/report"
	"motor-picker/pkg/registry"
)

var cliLog = logger.NewStructured(logger.Options{Level: "warn", Format: "console", Output: "stderr"})

// vehicleFlags are shared by calc and report.
type vehicleFlags struct {
	speed, force, wheel, voltage float64
	speedUnit, forceUnit         string
	max                          int
	catalogPath                  string
}

func (v *vehicleFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&v.speed, "speed", 0, "vehicle speed")
	fs.StringVar(&v.speedUnit, "speed-unit", "kph", "speed unit: kph or m/s")
	fs.Float64Var(&v.force, "force", 0, "pushing force")
	fs.StringVar(&v.forceUnit, "force-unit", "kgf", "force unit: kgf or N")
	fs.Float64Var(&v.wheel, "wheel", 0, "wheel diameter in cm")
	fs.Float64Var(&v.voltage, "voltage", 0, "system voltage filter, 0 for any")
	fs.IntVar(&v.max, "max", 0, "maximum suggestions, 0 for the default")
	fs.StringVar(&v.catalogPath, "catalog", "", "xlsx catalog to use instead of the built-in one")
}

func (v *vehicleFlags) input() models.VehicleInput {
	in := models.VehicleInput{
		Speed:           v.speed,
		SpeedUnit:       models.SpeedUnit(v.speedUnit),
		Force:           v.force,
		ForceUnit:       models.ForceUnit(v.forceUnit),
		WheelDiameterCm: v.wheel,
		MaxResults:      v.max,
	}
	if v.voltage != 0 {
		in.SystemVoltage = models.Float64(v.voltage)
	}
	return in
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return xlsx.FileSource{Path: path}.Load(context.Background())
}

func suggest(in models.VehicleInput, catalogPath string) (models.MotorRequirements, []models.MatchResult, error) {
	reqs, err := physics.FromVehicleInput(in)
	if err != nil {
		return reqs, nil, err
	}
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return reqs, nil, err
	}
	matches, err := matcher.New(cat, nil, cliLog).Find(context.Background(), models.Requirement{
		RequiredRPM:      reqs.RPM,
		RequiredTorqueNm: reqs.TorqueNm,
		MaxResults:       in.MaxResults,
		FilterVoltage:    in.SystemVoltage,
	})
	return reqs, matches, err
}

func runCalc(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	var v vehicleFlags
	v.register(fs)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reqs, matches, err := suggest(v.input(), v.catalogPath)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, map[string]interface{}{"requirements": reqs, "suggestions": matches})
	}

	fmt.Fprintf(stdout, "Speed:  %.1f RPM (%.2f rad/s)\n", reqs.RPM, reqs.AngularVelocityRadS)
	fmt.Fprintf(stdout, "Torque: %.3f N·m (%.2f kgf·cm)\n", reqs.TorqueNm, reqs.TorqueKgfCm)
	fmt.Fprintf(stdout, "Power:  %.2f W (%.4f hp)\n\n", reqs.PowerW, reqs.PowerHP)
	printMatches(stdout, matches)
	return nil
}

func runMatch(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	rpm := fs.Float64("rpm", 0, "required output shaft speed in RPM")
	torque := fs.Float64("torque", 0, "required torque")
	torqueUnit := fs.String("torque-unit", "nm", "torque unit: nm or kgfcm")
	voltage := fs.Float64("voltage", 0, "nominal voltage filter, 0 for any")
	max := fs.Int("max", 0, "maximum suggestions, 0 for the default")
	catalogPath := fs.String("catalog", "", "xlsx catalog to use instead of the built-in one")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := models.Requirement{RequiredRPM: *rpm, RequiredTorqueNm: *torque, MaxResults: *max}
	switch *torqueUnit {
	case "nm":
	case "kgfcm":
		req.RequiredTorqueNm = physics.KgfcmToNm(*torque)
	default:
		return fmt.Errorf("unknown torque unit %q", *torqueUnit)
	}
	if *voltage != 0 {
		req.FilterVoltage = voltage
	}

	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}
	matches, err := matcher.New(cat, nil, cliLog).Find(context.Background(), req)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, map[string]interface{}{"matches": matches})
	}
	printMatches(stdout, matches)
	return nil
}

func runReport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	var v vehicleFlags
	v.register(fs)
	out := fs.String("o", "motor-suggestions.pdf", "output file")
	title := fs.String("title", "", "report title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := v.input()
	reqs, matches, err := suggest(in, v.catalogPath)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := report.Generate(f, report.Input{
		Title:        *title,
		Vehicle:      &in,
		Requirements: reqs,
		Voltage:      in.SystemVoltage,
		Suggestions:  matches,
	}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d suggestions to %s\n", len(matches), *out)
	return nil
}

func printMatches(w io.Writer, matches []models.MatchResult) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No motors matched. Try a different voltage or relax the speed or torque requirement.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMOTOR\tRPM\tRPM %\tTORQUE N·m\tTORQUE %\tSCORE\tID")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.0f\t%.3f\t%.0f\t%.1f\t%s\n",
			i+1, m.Motor.DisplayName(), m.Motor.RPMNoLoad, m.RPMUtilization,
			m.Motor.TorqueRatedNm, m.TorqueUtilization, m.OverallScore, m.Motor.ID)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- catalog ---

func runCatalog(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("catalog needs a subcommand: list, export, import, seed, index or invalidate")
	}
	switch args[0] {
	case "list":
		return catalogList(args[1:], stdout)
	case "export":
		return catalogExport(args[1:], stdout)
	case "import":
		return catalogImport(args[1:], stdout)
	case "seed":
		return catalogSeed(args[1:], stdout)
	case "index":
		return catalogIndex(args[1:], stdout)
	case "invalidate":
		return catalogInvalidate(args[1:], stdout)
	default:
		return fmt.Errorf("unknown catalog subcommand %q", args[0])
	}
}

func catalogList(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog list", flag.ContinueOnError)
	series := fs.String("series", "", "only this series (Micro Metal, 20D, 25D, 37D)")
	voltage := fs.Float64("voltage", 0, "only this nominal voltage")
	catalogPath := fs.String("catalog", "", "xlsx catalog to use instead of the built-in one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}
	var want models.Series
	if *series != "" {
		if want, err = models.ParseSeries(*series); err != nil {
			return err
		}
	}

	motors := cat.Filter(func(m models.MotorSpec) bool {
		return (want == "" || m.Series == want) && (*voltage == 0 || m.Voltage == *voltage)
	})
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMOTOR\tV\tRPM\tTORQUE N·m\tSTALL A")
	for _, m := range motors {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.0f\t%.3f\t%.2f\n",
			m.ID, m.DisplayName(), m.Voltage, m.RPMNoLoad, m.TorqueRatedNm, m.StallCurrentA)
	}
	tw.Flush()
	fmt.Fprintf(stdout, "\n%d of %d entries, catalog %s\n", len(motors), cat.Len(), cat.Version())
	return nil
}

func catalogExport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog export", flag.ContinueOnError)
	out := fs.String("o", "motor-catalog.xlsx", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	cat := catalog.Default()
	if err := xlsx.Export(cat, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported %d entries to %s\n", cat.Len(), *out)
	return nil
}

// catalogImport checks a spreadsheet against the catalog rules without
// writing it anywhere. Use seed -from to load it into postgres.
func catalogImport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog import", flag.ContinueOnError)
	in := fs.String("i", "", "xlsx file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-i is required")
	}

	cat, err := xlsx.FileSource{Path: *in}.Load(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d valid entries, version %s, voltages %v\n", *in, cat.Len(), cat.Version(), cat.Voltages())
	return nil
}

// openStore is replaced in tests.
var openStore = func(cfg *config.Config) (*pgstore.Store, func(), error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pgstore.New(pg.DB, cliLog), func() { pg.Close() }, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func catalogSeed(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog seed", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file, default configs/config.yaml")
	from := fs.String("from", "", "xlsx file to seed from instead of the built-in catalog")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(*from)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	n, err := store.Seed(ctx, cat)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Seeded %d new entries (%d in catalog %s)\n", n, cat.Len(), cat.Version())
	return nil
}

func catalogIndex(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog index", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file, default configs/config.yaml")
	from := fs.String("from", "", "xlsx file to index instead of the built-in catalog")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(*from)
	if err != nil {
		return err
	}
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}

	ctx := context.Background()
	idx := search.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, cliLog)
	if err := idx.EnsureIndex(ctx); err != nil {
		return err
	}
	n, err := idx.Index(ctx, cat)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Indexed %d entries\n", n)
	return nil
}

func catalogInvalidate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("catalog invalidate", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file, default configs/config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	rc := database.NewRedis(cfg.Database.Redis)
	defer rc.Close()

	var src catalog.Source = catalog.EmbeddedSource{}
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		src = pgstore.New(nil, cliLog)
	case config.CatalogSourceXLSX:
		src = xlsx.FileSource{Path: cfg.Catalog.XLSXPath}
	}
	if err := catalog.NewCachedSource(src, rc.Client, 0, cliLog).Invalidate(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Dropped cached %s catalog snapshot\n", src.Name())
	return nil
}

// --- registry ---

func runRegistry(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("registry needs a subcommand: list or validate")
	}
	fs := flag.NewFlagSet("registry "+args[0], flag.ContinueOnError)
	path := fs.String("path", "", "registry file, default is the built-in registry")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var (
		reg *registry.OperationRegistry
		err error
	)
	if *path != "" {
		reg, err = registry.LoadRegistry(*path)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tROUTE\tTASK TYPE\tVERSION")
		for _, op := range reg.Operations {
			route := op.HTTPMethod + " " + op.HTTPRoute
			taskType := op.TaskType
			if taskType == "" {
				taskType = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", op.ID, route, taskType, op.Version)
		}
		tw.Flush()
		return nil
	case "validate":
		if err := validateRegistry(reg); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Registry validation passed (%d operations).\n", len(reg.Operations))
		return nil
	default:
		return fmt.Errorf("unknown registry subcommand %q", args[0])
	}
}
