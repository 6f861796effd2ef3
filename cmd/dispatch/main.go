package main

import (
	"bufio"
	"context"
	"dispatch-route-service/internal/adapters/events"
	"dispatch-route-service/internal/adapters/report"
	"dispatch-route-service/internal/adapters/routing"
	"dispatch-route-service/internal/config"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"dispatch-route-service/internal/services"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type options struct {
	from     string
	to       string
	offline  bool
	maxSteps int
	interval time.Duration
}

// main plans a single dispatch between two places and simulates the drive,
// printing progress to stdout. Ctrl-C stops the simulation.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var opts options
	flag.StringVar(&opts.from, "from", "", "start location (prompted when empty)")
	flag.StringVar(&opts.to, "to", "", "end location (prompted when empty)")
	flag.BoolVar(&opts.offline, "offline", false, "use built-in demo places instead of OpenRouteService")
	flag.IntVar(&opts.maxSteps, "max-steps", cfg.Simulation.MaxSteps, "stop the simulation after this many steps (0 = unlimited)")
	flag.DurationVar(&opts.interval, "interval", cfg.Simulation.StepInterval, "delay between simulation steps")
	flag.Parse()

	// Progress goes to stdout; logs stay on stderr and default to warnings.
	logger, err := logging.New(config.Get("DISPATCH_CLI_LOG_LEVEL", "warn"), "console")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	cfg *config.Config,
	opts options,
	logger *zap.Logger,
	in io.Reader,
	out io.Writer,
) error {
	geocoder, routes, err := providers(cfg, opts.offline, logger)
	if err != nil {
		return err
	}

	stdin := bufio.NewReader(in)
	from, err := prompt(stdin, out, "Enter start location: ", opts.from)
	if err != nil {
		return err
	}
	to, err := prompt(stdin, out, "Enter end location: ", opts.to)
	if err != nil {
		return err
	}

	reporters := []ports.Reporter{report.NewConsoleReporter(out)}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer events.Close(nc, logger)
		reporters = append(reporters, events.NewNATSReporter(nc, logger))
	}

	sim := cfg.Simulation.Simulator()
	sim.MaxSteps = opts.maxSteps
	sim.Pacer = nil
	if opts.interval > 0 {
		sim.Pacer = services.IntervalPacer{Interval: opts.interval}
	}

	dispatcher, err := services.NewDispatcher(
		geocoder, routes,
		cfg.Economics,
		sim,
		report.NewMulti(reporters...),
		logger,
		services.WithFallbackRoutes(cfg.Fallback),
	)
	if err != nil {
		return err
	}

	decision, err := dispatcher.Plan(ctx, from, to)
	if err != nil {
		return err
	}
	if decision.UsedFallback {
		fmt.Fprintln(out, "No routes returned. Scored fallback test routes.")
	}

	res, err := dispatcher.Drive(ctx, decision)
	if err != nil {
		return err
	}
	if res.Outcome == domain.OutcomeStepLimit {
		return fmt.Errorf("vehicle did not arrive within %d steps", res.Steps)
	}
	return nil
}

func providers(cfg *config.Config, offline bool, logger *zap.Logger) (ports.Geocoder, ports.RouteProvider, error) {
	if offline {
		p := demoProvider()
		return p, p, nil
	}

	if strings.TrimSpace(cfg.ORS.APIKey) == "" {
		return nil, nil, errors.New("ORS_API_KEY is required (or pass -offline)")
	}

	ors, err := routing.NewORSClient(routing.ORSConfig{
		APIKey:       cfg.ORS.APIKey,
		BaseURL:      cfg.ORS.BaseURL,
		Profile:      cfg.ORS.Profile,
		Timeout:      cfg.ORS.Timeout,
		Alternatives: cfg.ORS.Alternatives,
		Country:      cfg.ORS.Country,
	}, nil, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	return ors, ors, nil
}

// prompt returns preset when non-empty, otherwise reads one line after
// printing label.
func prompt(r *bufio.Reader, w io.Writer, label, preset string) (string, error) {
	if s := strings.TrimSpace(preset); s != "" {
		return s, nil
	}

	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read location: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("location must be non-empty")
	}
	return line, nil
}

func demoProvider() *routing.MockProvider {
	return routing.NewMockProvider(
		[]routing.MockPlace{
			{Name: "Phoenix, AZ", At: domain.Coordinates{Lon: -112.074037, Lat: 33.448377}},
			{Name: "Scottsdale, AZ", At: domain.Coordinates{Lon: -111.926052, Lat: 33.494170}},
			{Name: "Tempe, AZ", At: domain.Coordinates{Lon: -111.940016, Lat: 33.425510}},
			{Name: "Mesa, AZ", At: domain.Coordinates{Lon: -111.831472, Lat: 33.415184}},
			// Due north-east of Phoenix by a whole number of simulator steps.
			{Name: "Depot", At: domain.Coordinates{Lon: -112.064037, Lat: 33.458377}},
		},
		[]routing.MockRoute{
			{From: "Phoenix, AZ", To: "Scottsdale, AZ", Routes: []domain.RouteCandidate{
				{DistanceMeters: 19800, DurationSeconds: 1500},
				{DistanceMeters: 17400, DurationSeconds: 1740},
			}},
			{From: "Phoenix, AZ", To: "Depot", Routes: []domain.RouteCandidate{
				{DistanceMeters: 1800, DurationSeconds: 240},
			}},
			{From: "Tempe, AZ", To: "Mesa, AZ", Routes: []domain.RouteCandidate{
				{DistanceMeters: 16300, DurationSeconds: 1080},
				{DistanceMeters: 14900, DurationSeconds: 1260},
				{DistanceMeters: 21000, DurationSeconds: 960},
			}},
		},
	)
}
