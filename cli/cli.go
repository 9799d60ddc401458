package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"roomrec-server/api"
	"roomrec-server/api/roomrec"
	"roomrec-server/config"
	"roomrec-server/di"
	"roomrec-server/models"
	services "roomrec-server/service"
	"roomrec-server/util"
)

// Context is handed to every command's Run method.
type Context struct {
	Config config.Config
	Logger *log.Logger
	Out    io.Writer
}

// ServeCmd runs the HTTP server with the periodic snapshot refresher and, when a broker is
// configured, the MQTT sensor subscriber.
type ServeCmd struct{}

func (c *ServeCmd) Run(app *Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}
	defer container.Close()

	if _, err := container.SnapshotRefresherService.Refresh(ctx); err != nil {
		app.Logger.Warn("initial snapshot load failed, serving 503 until the next refresh", "err", err)
	}
	container.SnapshotRefresherService.StartPeriodicJob(ctx, app.Config.SnapshotRefresh)

	if container.SensorSubscriber != nil {
		if err := container.SensorSubscriber.Start(ctx); err != nil {
			app.Logger.Error("sensor ingestion disabled", "err", err)
		}
	}

	return container.RoomRecHttpServer.Start(ctx)
}

// RecommendCmd prints a recommendation, computed locally against the store or fetched
// from a running server.
type RecommendCmd struct {
	Temperature       float64 `help:"Preferred temperature in °C." required:""`
	TimeSlot          string  `help:"Time slot as HH:MM-HH:MM." required:"" name:"time-slot"`
	Noise             float64 `help:"Maximum acceptable sound level in dB (0 keeps the standard limit)."`
	MinSeats          int     `help:"Minimum seating capacity." name:"min-seats"`
	Tolerance         float64 `help:"Temperature tolerance in °C (negative keeps the configured value)." default:"-1"`
	Top               int     `help:"Number of rooms to return (0 keeps the configured value)."`
	CheckAvailability bool    `help:"Exclude rooms booked during the slot." name:"check-availability"`
	Server            string  `help:"Base URL of a running server; empty computes locally."`
	Chart             string  `help:"Write an HTML ranking chart to this file." type:"path"`
}

// Request converts the flags to the wire request.
func (c *RecommendCmd) Request() models.RecommendationRequest {
	temp := c.Temperature
	req := models.RecommendationRequest{Temperature: &temp, TimeSlot: c.TimeSlot}
	if c.Noise > 0 {
		noise := c.Noise
		req.NoiseLevel = &noise
	}
	if c.MinSeats > 0 {
		seats := c.MinSeats
		req.MinSeatingCapacity = &seats
	}
	if c.Tolerance >= 0 {
		tol := c.Tolerance
		req.Tolerance = &tol
	}
	if c.Top > 0 {
		top := c.Top
		req.TopN = &top
	}
	if c.CheckAvailability {
		check := true
		req.CheckAvailability = &check
	}
	return req
}

func (c *RecommendCmd) Run(app *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	req := c.Request()
	if _, err := req.Validate(); err != nil {
		return err
	}

	var (
		resp *models.RecommendationResponse
		err  error
	)
	if c.Server != "" {
		resp, err = c.remote(ctx, req)
	} else {
		resp, err = c.local(ctx, app, req)
	}

	var nm *roomrec.NoMatchError
	if errors.As(err, &nm) {
		PrintNoMatch(app.Out, nm.NoMatchResponse)
		return nil
	}
	if err != nil {
		return err
	}

	PrintRanking(app.Out, c.TimeSlot, c.Temperature, resp.Rooms)
	if c.Chart != "" {
		return writeChart(c.Chart, fmt.Sprintf("%s at %.1f°C", c.TimeSlot, c.Temperature), resp.Rooms)
	}
	return nil
}

func (c *RecommendCmd) remote(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	return roomrec.NewRoomRecClient(api.NewHTTPClient(c.Server)).Recommend(ctx, req)
}

func (c *RecommendCmd) local(ctx context.Context, app *Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	container, err := di.NewContainer(ctx, app.Config, app.Logger)
	if err != nil {
		return nil, err
	}
	defer container.Close()

	if _, err := container.SnapshotRefresherService.Refresh(ctx); err != nil {
		return nil, err
	}
	res, err := container.RoomService.Recommend(req)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, &roomrec.NoMatchError{NoMatchResponse: models.NoMatchResponse{
			Error:                 res.Detail.Message(),
			Reason:                string(res.Reason),
			Detail:                string(res.Detail),
			AvailableTemperatures: res.AvailableTemperatures,
		}}
	}
	return &models.RecommendationResponse{Rooms: res.Rooms, SnapshotID: res.SnapshotID}, nil
}

func writeChart(path, title string, rooms []models.RankedRoom) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return util.RenderRankingChart(f, title, rooms)
}

// SeedCmd loads the JSON resource files into the configured store.
type SeedCmd struct {
	Dir string `help:"Directory holding agenda.json, facilities.json and sensor_readings.json." type:"path"`
}

func (c *SeedCmd) Run(app *Context) error {
	ctx := context.Background()
	dir := c.Dir
	if dir == "" {
		dir = filepath.Join(config.BaseDir(), config.RESOURCES_PATH_PREFIX)
	}

	container, err := di.NewContainer(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}
	defer container.Close()

	report, err := services.NewSeedService(container.RoomDao, app.Logger).SeedFromDir(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Seeded %d agenda entries, %d facilities and %d sensor readings from %s\n",
		report.AgendaEntries, report.Facilities, report.Readings, dir)
	return nil
}
